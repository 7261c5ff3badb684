// Package gsi fetches landform-classification vector tiles from the GSI
// (Geospatial Information Authority of Japan) experimental tile service
// and decodes them into feature collections for the landform matcher.
package gsi

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
)

// LayerSpec describes one classification tile source. The URL template
// carries {z}/{x}/{y} placeholders.
type LayerSpec struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LayerSet maps the two classification layers to their tile sources.
type LayerSet struct {
	Natural    LayerSpec `yaml:"natural"`
	Artificial LayerSpec `yaml:"artificial"`
}

// DefaultLayerSet returns the published GSI experimental landform
// classification sources.
func DefaultLayerSet() LayerSet {
	return LayerSet{
		Natural: LayerSpec{
			Name: "natural",
			URL:  "https://cyberjapandata.gsi.go.jp/xyz/experimental_landformclassification1/{z}/{x}/{y}.geojson",
		},
		Artificial: LayerSpec{
			Name: "artificial",
			URL:  "https://cyberjapandata.gsi.go.jp/xyz/experimental_landformclassification2/{z}/{x}/{y}.geojson",
		},
	}
}

// LoadLayerSet parses a YAML layer definition, filling omitted layers
// from the defaults.
func LoadLayerSet(data []byte) (LayerSet, error) {
	set := DefaultLayerSet()
	if err := yaml.Unmarshal(data, &set); err != nil {
		return LayerSet{}, eris.Wrap(err, "gsi: parse layer set")
	}
	if set.Natural.URL == "" || set.Artificial.URL == "" {
		return LayerSet{}, eris.New("gsi: layer set missing url")
	}
	return set, nil
}

// For returns the spec for a landform layer.
func (s LayerSet) For(layer landform.Layer) LayerSpec {
	if layer == landform.LayerArtificial {
		return s.Artificial
	}
	return s.Natural
}

// tileURL expands the template for a tile address.
func (l LayerSpec) tileURL(addr geo.TiledAddress) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(addr.Zoom),
		"{x}", strconv.Itoa(addr.X),
		"{y}", strconv.Itoa(addr.Y),
	)
	return r.Replace(l.URL)
}
