// Package shelter resolves the nearest evacuation facilities for a point
// from an externally ranked candidate list, subject to the fixed coverage
// region.
package shelter

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/osaka-bousai/riskpoint/internal/geo"
)

// Expected non-exceptional outcomes. Callers branch on these with
// eris.Is; neither is a failure.
var (
	// ErrOutOfCoverage is returned for points outside the coverage
	// region. No facility data exists there, so candidates are never
	// inspected.
	ErrOutOfCoverage = eris.New("shelter: point outside coverage region")

	// ErrNoFacility is returned when the candidate list is empty inside
	// coverage.
	ErrNoFacility = eris.New("shelter: no facility candidates")
)

// Coverage is the approximate Osaka prefecture bounding box. Facility
// data outside it is deliberately unavailable.
var Coverage = geo.BBox{
	LatMin: 34.35,
	LatMax: 34.95,
	LonMin: 135.25,
	LonMax: 135.85,
}

// Limit clamp bounds, matching the upstream data service.
const (
	minLimit = 1
	maxLimit = 20
)

// walkingMetersPerMinute is the planning-standard walking speed.
const walkingMetersPerMinute = 80

// Candidate is one facility from the external lookup service. Read-only
// to this package; DistanceKM is as ranked by the source.
type Candidate struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Ward             string  `json:"ward"`
	Type             string  `json:"type"`
	Capacity         int     `json:"capacity"`
	Phone            string  `json:"phone"`
	OpeningCondition string  `json:"opening_condition"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	DistanceKM       float64 `json:"distance_km"`
}

// Result is one resolved facility with the distance normalized to whole
// meters.
type Result struct {
	Candidate
	DistanceMeters int `json:"distance_m"`
}

// WalkingMinutes estimates travel time to the facility at 80 m/min.
func (r Result) WalkingMinutes() int {
	return int(math.Round(float64(r.DistanceMeters) / walkingMetersPerMinute))
}

// Nearest returns the first limit candidates for a point. The candidate
// list is already distance-sorted ascending by the source; no re-sorting
// happens here. Points outside Coverage return ErrOutOfCoverage without
// looking at candidates; an empty list inside coverage returns
// ErrNoFacility.
func Nearest(p geo.Point, candidates []Candidate, limit int) ([]Result, error) {
	if !Coverage.Contains(p) {
		return nil, eris.Wrapf(ErrOutOfCoverage, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	if len(candidates) == 0 {
		return nil, ErrNoFacility
	}

	if limit < minLimit {
		limit = minLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}
	if limit > len(candidates) {
		limit = len(candidates)
	}

	results := make([]Result, 0, limit)
	for _, c := range candidates[:limit] {
		results = append(results, Result{
			Candidate:      c,
			DistanceMeters: int(math.Round(c.DistanceKM * 1000)),
		})
	}
	return results, nil
}
