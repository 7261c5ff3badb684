package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osaka-bousai/riskpoint/internal/arbiter"
	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
	"github.com/osaka-bousai/riskpoint/internal/resolver"
	"github.com/osaka-bousai/riskpoint/internal/risk"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

type stubScorer struct {
	score *risk.Score
	err   error
}

func (s *stubScorer) ScoreAt(context.Context, geo.Point) (*risk.Score, error) {
	return s.score, s.err
}

type stubShelters struct {
	candidates []shelter.Candidate
	err        error
}

func (s *stubShelters) Candidates(context.Context, geo.Point, int) ([]shelter.Candidate, error) {
	return s.candidates, s.err
}

type emptyFetcher struct{}

func (emptyFetcher) FetchLayer(context.Context, landform.Layer, geo.TiledAddress) (landform.Collection, error) {
	return landform.Collection{}, nil
}

func newTestServer(scorer *stubScorer, shelters *stubShelters) *Server {
	pl := resolver.New(emptyFetcher{}, scorer, shelters, nil, arbiter.New())
	return New(pl, scorer, shelters)
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(&stubScorer{}, &stubShelters{})

	rec := doGet(t, s.Router(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Risk_OK(t *testing.T) {
	overall := 72.0
	s := newTestServer(&stubScorer{score: &risk.Score{
		Status:          risk.StatusOK,
		OverallRisk:     &overall,
		RiskDescription: "洪水・内水氾濫",
		Explanation:     "河川に近い低地のため注意が必要です。",
	}}, &stubShelters{})

	rec := doGet(t, s.Router(), "/risk?lat=34.7025&lon=135.4959")
	require.Equal(t, http.StatusOK, rec.Code)

	var got risk.Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, risk.StatusOK, got.Status)
	require.NotNil(t, got.OverallRisk)
	assert.Equal(t, 72.0, *got.OverallRisk)
	assert.Equal(t, "洪水・内水氾濫", got.RiskDescription)
}

func TestServer_Risk_NoMatch(t *testing.T) {
	s := newTestServer(&stubScorer{score: &risk.Score{
		Status:      risk.StatusNoMatch,
		Explanation: "一致する地点が見つかりませんでした。",
	}}, &stubShelters{})

	rec := doGet(t, s.Router(), "/risk?lat=34.7025&lon=135.4959")
	require.Equal(t, http.StatusOK, rec.Code)

	var got risk.Score
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, risk.StatusNoMatch, got.Status)
	assert.Nil(t, got.OverallRisk)
}

func TestServer_Risk_BadParams(t *testing.T) {
	s := newTestServer(&stubScorer{}, &stubShelters{})

	for _, path := range []string{"/risk", "/risk?lat=abc&lon=135.5", "/risk?lat=34.7"} {
		rec := doGet(t, s.Router(), path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestServer_Shelters(t *testing.T) {
	s := newTestServer(&stubScorer{}, &stubShelters{candidates: []shelter.Candidate{
		{Name: "近い小学校", DistanceKM: 0.42},
		{Name: "中間の公園", DistanceKM: 1.2},
	}})

	rec := doGet(t, s.Router(), "/shelters/nearest?lat=34.7025&lon=135.4959&limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []shelter.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "近い小学校", got[0].Name)
	assert.Equal(t, 420, got[0].DistanceMeters)
}

func TestServer_Shelters_OutOfCoverageIsEmptyList(t *testing.T) {
	s := newTestServer(&stubScorer{}, &stubShelters{candidates: []shelter.Candidate{
		{Name: "どこかの施設"},
	}})

	// Tokyo is outside the supported region.
	rec := doGet(t, s.Router(), "/shelters/nearest?lat=35.68&lon=139.76")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_Resolve(t *testing.T) {
	overall := 85.0
	s := newTestServer(&stubScorer{score: &risk.Score{
		Status:      risk.StatusOK,
		OverallRisk: &overall,
	}}, &stubShelters{candidates: []shelter.Candidate{
		{Name: "近い小学校", DistanceKM: 0.3},
	}})

	rec := doGet(t, s.Router(), "/resolve?lat=34.7025&lon=135.4959")
	require.Equal(t, http.StatusOK, rec.Code)

	var got resolver.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, risk.SeverityHigh.String(), got.Risk.SeverityText)
	require.NotNil(t, got.Risk.NumericScore)
	assert.Equal(t, 85.0, *got.Risk.NumericScore)
	assert.Equal(t, resolver.ShelterFound, got.ShelterStatus)
	require.Len(t, got.Shelters, 1)
}

func TestServer_CORSHeaders(t *testing.T) {
	s := newTestServer(&stubScorer{}, &stubShelters{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://bousai.example")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
