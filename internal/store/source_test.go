package store

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/risk"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// fakeStore returns canned lookup results.
type fakeStore struct {
	point      *RiskPoint
	pointErr   error
	candidates []shelter.Candidate
}

func (f *fakeStore) PutShelters(context.Context, []Shelter) (int, error)     { return 0, nil }
func (f *fakeStore) PutRiskPoints(context.Context, []RiskPoint) (int, error) { return 0, nil }
func (f *fakeStore) Migrate(context.Context) error                           { return nil }
func (f *fakeStore) Close() error                                            { return nil }

func (f *fakeStore) NearestShelters(context.Context, geo.Point, int) ([]shelter.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeStore) NearestRiskPoint(context.Context, geo.Point) (*RiskPoint, float64, error) {
	if f.pointErr != nil {
		return nil, 0, f.pointErr
	}
	return f.point, 120, nil
}

func TestScorer_ScoreAt_Match(t *testing.T) {
	st := &fakeStore{point: &RiskPoint{
		OverallRisk:     fptr(72),
		RiskDescription: "洪水・土砂災害",
		ElevScore:       fptr(10),
		SlopeScore:      fptr(22),
	}}

	got, err := NewScorer(st).ScoreAt(context.Background(), geo.Point{Lat: 34.70, Lon: 135.50})
	require.NoError(t, err)
	assert.Equal(t, risk.StatusOK, got.Status)
	assert.Equal(t, 72.0, *got.OverallRisk)
	assert.True(t, got.Flood)
	assert.True(t, got.Landslide)
	assert.False(t, got.Tsunami)
	assert.NotEmpty(t, got.Explanation)
}

func TestScorer_ScoreAt_NoMatch(t *testing.T) {
	st := &fakeStore{pointErr: eris.Wrap(ErrNoRiskPoint, "test")}

	got, err := NewScorer(st).ScoreAt(context.Background(), geo.Point{Lat: 34.70, Lon: 135.50})
	require.NoError(t, err)
	assert.Equal(t, risk.StatusNoMatch, got.Status)
	assert.Nil(t, got.OverallRisk)
	assert.Equal(t, "一致する地点が見つかりませんでした。", got.Explanation)
}

func TestScorer_ScoreAt_StoreFailure(t *testing.T) {
	st := &fakeStore{pointErr: eris.New("connection refused")}

	_, err := NewScorer(st).ScoreAt(context.Background(), geo.Point{Lat: 34.70, Lon: 135.50})
	require.Error(t, err)
}

func TestScorer_ScoreAt_NilScoresCoalesce(t *testing.T) {
	st := &fakeStore{point: &RiskPoint{RiskDescription: "津波"}}

	got, err := NewScorer(st).ScoreAt(context.Background(), geo.Point{Lat: 34.70, Lon: 135.50})
	require.NoError(t, err)
	assert.Equal(t, risk.StatusOK, got.Status)
	assert.Nil(t, got.OverallRisk)
	assert.True(t, got.Tsunami)
	assert.NotEmpty(t, got.Explanation)
}

func TestShelterLookup_Candidates(t *testing.T) {
	st := &fakeStore{candidates: []shelter.Candidate{{Name: "近い小学校", DistanceKM: 0.2}}}

	got, err := NewShelterLookup(st).Candidates(context.Background(), geo.Point{Lat: 34.70, Lon: 135.50}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "近い小学校", got[0].Name)
}
