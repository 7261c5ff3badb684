package landform

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/osaka-bousai/riskpoint/internal/geo"
)

// DefaultPointTolerance is the planar degree-space distance under which a
// bare point feature counts as containing the query point. Roughly 100 m
// at Japanese latitudes; an empirical constant, not a precise physical
// distance.
const DefaultPointTolerance = 0.001

// Feature is one classified landform feature from a tile layer. It is
// owned transiently by a Match call and never retained.
type Feature struct {
	Geometry geom.T
	Props    map[string]any
	Layer    Layer
}

// Collection is the ordered feature set of one tile layer.
type Collection struct {
	Layer    Layer
	Features []Feature
}

// Matcher selects the best-fitting feature for a query point.
type Matcher struct {
	// PointTolerance is the containment tolerance for bare point
	// geometries, in planar degrees.
	PointTolerance float64
}

// NewMatcher returns a Matcher with the default point tolerance.
func NewMatcher() *Matcher {
	return &Matcher{PointTolerance: DefaultPointTolerance}
}

// Match scans the collections in order and picks the winning feature.
// Any containing feature beats any non-containing one, and the first
// containing feature in scan order wins outright. Among non-containing
// features the minimum centroid proximity wins, ties broken by scan
// order. Returns ok=false when nothing across all layers matches.
// Deterministic for identical inputs.
func (m *Matcher) Match(p geo.Point, collections []Collection) (Feature, bool) {
	tolerance := m.PointTolerance
	if tolerance <= 0 {
		tolerance = DefaultPointTolerance
	}

	var (
		best     Feature
		bestDist = math.Inf(1)
		found    bool
	)

	for _, coll := range collections {
		for _, f := range coll.Features {
			if f.Geometry == nil {
				continue
			}
			contained, proximity, ok := m.evaluate(p, f.Geometry, tolerance)
			if !ok {
				continue
			}
			if contained {
				return f, true
			}
			if proximity < bestDist {
				bestDist = proximity
				best = f
				found = true
			}
		}
	}

	return best, found
}

// evaluate computes containment and fallback proximity for one geometry.
// ok=false means the geometry type is unsupported or degenerate.
func (m *Matcher) evaluate(p geo.Point, g geom.T, tolerance float64) (contained bool, proximity float64, ok bool) {
	switch t := g.(type) {
	case *geom.Point:
		c := t.Coords()
		if len(c) < 2 {
			return false, 0, false
		}
		d := geo.PlanarDistance(p, geo.Point{Lat: c[1], Lon: c[0]})
		return d < tolerance, d, true

	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return false, 0, false
		}
		ring := t.LinearRing(0).Coords()
		if len(ring) == 0 {
			return false, 0, false
		}
		if rayCast(p.Lon, p.Lat, ring) {
			return true, 0, true
		}
		return false, centroidDistance(p, ring), true

	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return false, 0, false
		}
		for i := 0; i < t.NumPolygons(); i++ {
			poly := t.Polygon(i)
			if poly.NumLinearRings() == 0 {
				continue
			}
			if rayCast(p.Lon, p.Lat, poly.LinearRing(0).Coords()) {
				return true, 0, true
			}
		}
		first := t.Polygon(0)
		if first.NumLinearRings() == 0 || len(first.LinearRing(0).Coords()) == 0 {
			return false, 0, false
		}
		return false, centroidDistance(p, first.LinearRing(0).Coords()), true

	default:
		return false, 0, false
	}
}

// rayCast reports whether (x, y) is inside the ring by the horizontal-ray
// parity test. The ring is closed implicitly: the last vertex pairs with
// the first.
func rayCast(x, y float64, ring []geom.Coord) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// centroidDistance returns the planar distance from p to the unweighted
// vertex centroid of the ring.
func centroidDistance(p geo.Point, ring []geom.Coord) float64 {
	var sumX, sumY float64
	for _, c := range ring {
		sumX += c[0]
		sumY += c[1]
	}
	n := float64(len(ring))
	return geo.PlanarDistance(p, geo.Point{Lat: sumY / n, Lon: sumX / n})
}
