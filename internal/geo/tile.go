package geo

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// TiledAddress locates a tile in the standard slippy-tile pyramid.
// Immutable once created.
type TiledAddress struct {
	Zoom int `json:"zoom"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// TileAt converts a point to its tile address at the given zoom using the
// Web-Mercator slippy formula. The point must already be validated.
func TileAt(p Point, zoom int) (TiledAddress, error) {
	if !p.Valid() {
		return TiledAddress{}, eris.Wrapf(ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	n := math.Exp2(float64(zoom))
	latRad := radians(p.Lat)

	x := int(math.Floor((p.Lon + 180) / 360 * n))
	y := int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	// Clamp the poles and the antimeridian edge into the pyramid.
	max := int(n) - 1
	if x < 0 {
		x = 0
	} else if x > max {
		x = max
	}
	if y < 0 {
		y = 0
	} else if y > max {
		y = max
	}

	return TiledAddress{Zoom: zoom, X: x, Y: y}, nil
}

// Center returns the geographic center of the tile.
func (t TiledAddress) Center() Point {
	n := math.Exp2(float64(t.Zoom))
	lon := (float64(t.X)+0.5)/n*360 - 180
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*(float64(t.Y)+0.5)/n)))
	return Point{Lat: latRad * 180 / math.Pi, Lon: lon}
}

// Path renders the address as "z/x/y" for tile URL templates.
func (t TiledAddress) Path() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}
