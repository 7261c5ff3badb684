// Package resolver composes the terrain, risk and shelter resolution
// chain for a geographic point. All external retrieval is injected; the
// pipeline fans the independent fetches out, joins them, and runs the
// deterministic merge steps on the completed set.
package resolver

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/osaka-bousai/riskpoint/internal/arbiter"
	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
	"github.com/osaka-bousai/riskpoint/internal/risk"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// RiskScorer supplies the authoritative risk score for a point. A nil
// score or an error both degrade to "no authoritative assessment".
type RiskScorer interface {
	ScoreAt(ctx context.Context, p geo.Point) (*risk.Score, error)
}

// ShelterSource supplies the ranked facility candidate list for a point.
type ShelterSource interface {
	Candidates(ctx context.Context, p geo.Point, limit int) ([]shelter.Candidate, error)
}

// ShelterStatus summarizes the facility resolution outcome.
type ShelterStatus string

const (
	ShelterFound       ShelterStatus = "ok"
	ShelterOutOfRegion ShelterStatus = "out_of_coverage"
	ShelterNone        ShelterStatus = "no_facility"
)

// Assessment is the full resolution result for one point.
type Assessment struct {
	Point         geo.Point        `json:"point"`
	Terrain       string           `json:"terrain"`
	Risk          risk.View        `json:"risk"`
	Shelters      []shelter.Result `json:"shelters,omitempty"`
	ShelterStatus ShelterStatus    `json:"shelter_status"`
}

// Pipeline wires the resolution chain together.
type Pipeline struct {
	terrain  *landform.Resolver
	scorer   RiskScorer
	shelters ShelterSource
	table    *risk.Table
	arb      *arbiter.Arbiter
}

// New creates a Pipeline. table may be nil when the risk source failed to
// load; lookups then always fall back to the generic record.
func New(fetcher landform.LayerFetcher, scorer RiskScorer, shelters ShelterSource, table *risk.Table, arb *arbiter.Arbiter) *Pipeline {
	return &Pipeline{
		terrain:  landform.NewResolver(fetcher),
		scorer:   scorer,
		shelters: shelters,
		table:    table,
		arb:      arb,
	}
}

// Arbiter exposes the pipeline's source arbiter for mode transitions.
func (pl *Pipeline) Arbiter() *arbiter.Arbiter { return pl.arb }

// Resolve runs the full chain for a point. The terrain classification,
// authoritative score and shelter candidate fetches run concurrently and
// are joined before fusion; collaborator failures degrade to sentinel
// outcomes rather than errors. The only error is an invalid input point.
func (pl *Pipeline) Resolve(ctx context.Context, p geo.Point, limit int) (*Assessment, error) {
	if !p.Valid() {
		return nil, eris.Wrapf(geo.ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}

	var (
		label      string
		score      *risk.Score
		candidates []shelter.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		label, err = pl.terrain.Resolve(gctx, p)
		return err
	})
	g.Go(func() error {
		s, err := pl.scorer.ScoreAt(gctx, p)
		if err != nil {
			zap.L().Debug("resolver: risk score fetch failed, using fallback",
				zap.Error(err))
			return nil
		}
		score = s
		return nil
	})
	g.Go(func() error {
		c, err := pl.shelters.Candidates(gctx, p, limit)
		if err != nil {
			zap.L().Debug("resolver: shelter candidates fetch failed",
				zap.Error(err))
			return nil
		}
		candidates = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tabular *risk.Record
	if rec, ok := pl.table.Lookup(label); ok {
		tabular = &rec
	}

	a := &Assessment{
		Point:   p,
		Terrain: label,
		Risk:    risk.Fuse(tabular, score),
	}

	results, err := shelter.Nearest(p, candidates, limit)
	switch {
	case eris.Is(err, shelter.ErrOutOfCoverage):
		a.ShelterStatus = ShelterOutOfRegion
	case eris.Is(err, shelter.ErrNoFacility):
		a.ShelterStatus = ShelterNone
	case err != nil:
		// Nearest has no other failure modes today.
		return nil, err
	default:
		a.Shelters = results
		a.ShelterStatus = ShelterFound
	}

	return a, nil
}

// ResolveGuarded runs Resolve under a source-arbiter ticket and invokes
// apply only if the display mode held for the whole resolution. Returns
// whether the result was applied; a dropped result is not an error.
func (pl *Pipeline) ResolveGuarded(ctx context.Context, p geo.Point, limit int, apply func(*Assessment)) (bool, error) {
	ticket := pl.arb.Begin()

	a, err := pl.Resolve(ctx, p, limit)
	if err != nil {
		return false, err
	}

	applied := pl.arb.Commit(ticket, func() { apply(a) })
	if !applied {
		zap.L().Debug("resolver: result superseded by mode change",
			zap.Stringer("issued_mode", ticket.Mode))
	}
	return applied, nil
}
