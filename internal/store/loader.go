package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// Property keys used by the national land numerical information (国土数値
// 情報) shelter dataset, with the hand-maintained Japanese keys as
// fallbacks.
var (
	nameKeys     = []string{"P20_002", "名称", "name"}
	wardKeys     = []string{"P20_001", "区", "ward"}
	addressKeys  = []string{"P20_003", "住所", "address"}
	typeKeys     = []string{"P20_004", "種別", "type"}
	capacityKeys = []string{"P20_005", "収容人数", "capacity"}
	phoneKeys    = []string{"電話", "phone"}
	openingKeys  = []string{"開設条件", "opening_condition"}
)

// LoadSheltersGeoJSON parses a shelter feature collection. Features
// without a point geometry or a name are skipped, and duplicate
// (name, lat, lon) triples are collapsed.
func LoadSheltersGeoJSON(r io.Reader) ([]Shelter, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "store: read geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "store: decode geojson")
	}

	seen := make(map[string]struct{})
	var out []Shelter
	skipped := 0
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt == nil {
			skipped++
			continue
		}
		coords := pt.Coords()
		if len(coords) < 2 {
			skipped++
			continue
		}

		sh := Shelter{
			Name:             propString(f.Properties, nameKeys),
			Ward:             propString(f.Properties, wardKeys),
			Address:          propString(f.Properties, addressKeys),
			Type:             propString(f.Properties, typeKeys),
			Capacity:         propInt(f.Properties, capacityKeys),
			Phone:            propString(f.Properties, phoneKeys),
			OpeningCondition: propString(f.Properties, openingKeys),
			Lon:              coords[0],
			Lat:              coords[1],
			Source:           "geojson",
		}
		if sh.Name == "" {
			skipped++
			continue
		}

		key := fmt.Sprintf("%s|%.6f|%.6f", sh.Name, sh.Lat, sh.Lon)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sh)
	}

	if skipped > 0 {
		zap.L().Debug("skipped geojson shelter features",
			zap.Int("skipped", skipped), zap.Int("loaded", len(out)))
	}
	return out, nil
}

// LoadSheltersShapefile reads shelters from a point shapefile, mapping
// DBF attributes through the same property keys as the GeoJSON loader.
func LoadSheltersShapefile(path string) ([]Shelter, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open shapefile %s", path)
	}
	defer reader.Close()

	fields := reader.Fields()
	seen := make(map[string]struct{})
	var out []Shelter
	for reader.Next() {
		i, shape := reader.Shape()
		pt, ok := shape.(*shp.Point)
		if !ok {
			continue
		}

		props := make(map[string]any, len(fields))
		for fi := range fields {
			props[fields[fi].String()] = reader.ReadAttribute(i, fi)
		}

		sh := Shelter{
			Name:             propString(props, nameKeys),
			Ward:             propString(props, wardKeys),
			Address:          propString(props, addressKeys),
			Type:             propString(props, typeKeys),
			Capacity:         propInt(props, capacityKeys),
			Phone:            propString(props, phoneKeys),
			OpeningCondition: propString(props, openingKeys),
			Lon:              pt.X,
			Lat:              pt.Y,
			Source:           "shapefile",
		}
		if sh.Name == "" {
			continue
		}

		key := fmt.Sprintf("%s|%.6f|%.6f", sh.Name, sh.Lat, sh.Lon)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sh)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "store: read shapefile %s", path)
	}
	return out, nil
}

// The description column carries its original Japanese header.
const riskDescriptionColumn = "リスク一覧"

// LoadRiskPointsCSV parses the scored risk dataset. Rows without a
// parseable lat/lon pair are skipped; blank score cells become nil.
func LoadRiskPointsCSV(r io.Reader) ([]RiskPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "store: read risk csv header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	latCol, latOK := idx["lat"]
	lonCol, lonOK := idx["lon"]
	if !latOK || !lonOK {
		return nil, eris.New("store: risk csv missing lat/lon columns")
	}

	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []RiskPoint
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "store: read risk csv row")
		}
		if latCol >= len(row) || lonCol >= len(row) {
			skipped++
			continue
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[lonCol]), 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		out = append(out, RiskPoint{
			Lat:             lat,
			Lon:             lon,
			FloodScore:      parseScore(cell(row, "flood_score")),
			LandslideScore:  parseScore(cell(row, "landslide_score")),
			TsunamiScore:    parseScore(cell(row, "tsunami_score")),
			OverallRisk:     parseScore(cell(row, "overall_risk")),
			RiskDescription: cell(row, riskDescriptionColumn),
			ElevScore:       parseScore(cell(row, "elev_score")),
			SlopeScore:      parseScore(cell(row, "slope_score")),
			RiverScore:      parseScore(cell(row, "river_score")),
		})
	}

	if skipped > 0 {
		zap.L().Debug("skipped risk csv rows without coordinates",
			zap.Int("skipped", skipped), zap.Int("loaded", len(out)))
	}
	return out, nil
}

func parseScore(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func propString(props map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := props[k]; ok {
			switch t := v.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					return s
				}
			case float64:
				return strconv.FormatFloat(t, 'f', -1, 64)
			}
		}
	}
	return ""
}

func propInt(props map[string]any, keys []string) int {
	for _, k := range keys {
		v, ok := props[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return int(t)
		case int:
			return t
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
				return n
			}
		}
	}
	return 0
}
