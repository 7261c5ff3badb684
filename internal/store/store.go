// Package store persists shelters and authoritative risk points and
// answers nearest-neighbour lookups over them. Two implementations are
// provided: SQLite for single-binary deployments and Postgres/PostGIS
// for shared ones.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// MaxRiskMatchMeters bounds how far a stored risk point may sit from the
// queried location before the lookup reports no match.
const MaxRiskMatchMeters = 400.0

// ErrNoRiskPoint is returned by NearestRiskPoint when no stored point
// lies within MaxRiskMatchMeters of the query. Callers branch on it
// with eris.Is; it is an expected outcome, not a failure.
var ErrNoRiskPoint = eris.New("store: no risk point within match radius")

// Shelter is one evacuation facility row.
type Shelter struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Ward             string  `json:"ward"`
	Type             string  `json:"type"`
	Capacity         int     `json:"capacity"`
	Phone            string  `json:"phone"`
	OpeningCondition string  `json:"opening_condition"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Source           string  `json:"source"`
}

// Candidate converts the row into the resolver's facility shape with the
// given distance filled in.
func (s Shelter) Candidate(distanceKM float64) shelter.Candidate {
	return shelter.Candidate{
		Name:             s.Name,
		Address:          s.Address,
		Ward:             s.Ward,
		Type:             s.Type,
		Capacity:         s.Capacity,
		Phone:            s.Phone,
		OpeningCondition: s.OpeningCondition,
		Lat:              s.Lat,
		Lon:              s.Lon,
		DistanceKM:       distanceKM,
	}
}

// RiskPoint is one scored location from the authoritative dataset.
// Score columns are pointers because the source CSV leaves them blank
// where a sub-model produced no value.
type RiskPoint struct {
	ID              string   `json:"id"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	FloodScore      *float64 `json:"flood_score"`
	LandslideScore  *float64 `json:"landslide_score"`
	TsunamiScore    *float64 `json:"tsunami_score"`
	OverallRisk     *float64 `json:"overall_risk"`
	RiskDescription string   `json:"risk_description"`
	ElevScore       *float64 `json:"elev_score"`
	SlopeScore      *float64 `json:"slope_score"`
	RiverScore      *float64 `json:"river_score"`
}

// Store is the persistence interface shared by the SQLite and Postgres
// implementations.
type Store interface {
	PutShelters(ctx context.Context, shelters []Shelter) (int, error)
	NearestShelters(ctx context.Context, p geo.Point, limit int) ([]shelter.Candidate, error)
	PutRiskPoints(ctx context.Context, points []RiskPoint) (int, error)
	// NearestRiskPoint returns the closest stored point and its distance
	// in meters, or ErrNoRiskPoint when none lies within
	// MaxRiskMatchMeters.
	NearestRiskPoint(ctx context.Context, p geo.Point) (*RiskPoint, float64, error)
	Migrate(ctx context.Context) error
	Close() error
}
