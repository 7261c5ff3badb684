package geo

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileAt(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		lon  float64
		zoom int
	}{
		{name: "osaka z14", lat: 34.6937, lon: 135.5023, zoom: 14},
		{name: "tokyo z14", lat: 35.6812, lon: 139.7671, zoom: 14},
		{name: "equator z1", lat: 0, lon: 0, zoom: 1},
		{name: "southern hemisphere z10", lat: -33.8688, lon: 151.2093, zoom: 10},
		{name: "western hemisphere z12", lat: 40.7128, lon: -74.0060, zoom: 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoint(tt.lat, tt.lon)
			require.NoError(t, err)

			addr, err := TileAt(p, tt.zoom)
			require.NoError(t, err)

			n := int(math.Exp2(float64(tt.zoom)))
			assert.GreaterOrEqual(t, addr.X, 0)
			assert.Less(t, addr.X, n)
			assert.GreaterOrEqual(t, addr.Y, 0)
			assert.Less(t, addr.Y, n)
		})
	}
}

func TestTileAt_KnownTile(t *testing.T) {
	// Osaka station at zoom 14 per the slippy formula.
	p := Point{Lat: 34.7025, Lon: 135.4959}
	addr, err := TileAt(p, 14)
	require.NoError(t, err)
	assert.Equal(t, 14, addr.Zoom)
	assert.Equal(t, 14358, addr.X)
	assert.Equal(t, 6506, addr.Y)
	assert.Equal(t, "14/14358/6506", addr.Path())
}

func TestTileAt_CenterRoundTrip(t *testing.T) {
	// A tile's center point maps back to the same tile.
	for _, zoom := range []int{8, 12, 14, 16} {
		p := Point{Lat: 34.6937, Lon: 135.5023}
		addr, err := TileAt(p, zoom)
		require.NoError(t, err)

		back, err := TileAt(addr.Center(), zoom)
		require.NoError(t, err)
		assert.Equal(t, addr, back, "zoom %d", zoom)
	}
}

func TestTileAt_InvalidPoint(t *testing.T) {
	_, err := TileAt(Point{Lat: 91, Lon: 135}, 14)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
}
