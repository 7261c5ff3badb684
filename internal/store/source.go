package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/risk"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// noMatchExplanation is the user-facing text for a query with no stored
// point nearby.
const noMatchExplanation = "一致する地点が見つかりませんでした。"

// Scorer serves authoritative risk scores out of a Store. It satisfies
// the resolver's RiskScorer interface.
type Scorer struct {
	store Store
}

// NewScorer wraps a store as an authoritative score source.
func NewScorer(st Store) *Scorer {
	return &Scorer{store: st}
}

// ScoreAt returns the score of the nearest stored point, or a no_match
// score when nothing lies within the match radius.
func (s *Scorer) ScoreAt(ctx context.Context, p geo.Point) (*risk.Score, error) {
	rp, _, err := s.store.NearestRiskPoint(ctx, p)
	if err != nil {
		if eris.Is(err, ErrNoRiskPoint) {
			return &risk.Score{
				Status:      risk.StatusNoMatch,
				Explanation: noMatchExplanation,
			}, nil
		}
		return nil, eris.Wrap(err, "store: score lookup")
	}

	flood, landslide, tsunami := risk.HazardFlags(rp.RiskDescription)
	return &risk.Score{
		Status:          risk.StatusOK,
		OverallRisk:     rp.OverallRisk,
		RiskDescription: rp.RiskDescription,
		Explanation:     risk.Explain(deref(rp.ElevScore), deref(rp.SlopeScore), rp.RiskDescription),
		Flood:           flood,
		Landslide:       landslide,
		Tsunami:         tsunami,
	}, nil
}

// ShelterLookup serves facility candidates out of a Store. It satisfies
// the resolver's ShelterSource interface.
type ShelterLookup struct {
	store Store
}

// NewShelterLookup wraps a store as a facility source.
func NewShelterLookup(st Store) *ShelterLookup {
	return &ShelterLookup{store: st}
}

func (l *ShelterLookup) Candidates(ctx context.Context, p geo.Point, limit int) ([]shelter.Candidate, error) {
	return l.store.NearestShelters(ctx, p, limit)
}

// deref coalesces a missing score to zero, matching how the scored
// dataset treats blanks.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
