// Package geo provides the coordinate, tile-address and distance primitives
// shared by the terrain, risk and shelter resolvers.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidCoordinate indicates a latitude/longitude outside the valid
// range or a non-finite value. Calls that receive it are never retried.
var ErrInvalidCoordinate = eris.New("geo: invalid coordinate")

// Point is a WGS84 geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint validates and returns a Point. Latitude must be in [-90, 90],
// longitude in [-180, 180], both finite.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return Point{}, eris.Wrapf(ErrInvalidCoordinate, "lat=%v lon=%v", lat, lon)
	}
	return p, nil
}

// Valid reports whether both coordinates are finite and in range.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two points in
// kilometers. Good enough for candidate ranking; not survey-grade.
func HaversineKM(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	s := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(s))
}

// PlanarDistance returns the planar degree-space distance between two
// points. Only meaningful for small separations; used for the point-feature
// containment tolerance.
func PlanarDistance(a, b Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// BBox is a geographic bounding box with inclusive edges.
type BBox struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

// Contains reports whether the point falls inside the box.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.LatMin && p.Lat <= b.LatMax &&
		p.Lon >= b.LonMin && p.Lon <= b.LonMax
}
