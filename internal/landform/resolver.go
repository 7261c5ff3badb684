package landform

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/osaka-bousai/riskpoint/internal/geo"
)

// Label sentinels. Everything else Resolve returns is a code-table name or
// one of the CodeName fallback formats.
const (
	// LabelNoData is returned when no feature in either layer matches.
	LabelNoData = "no data"
)

// DefaultZoom is the tile zoom the classification layers are published at.
const DefaultZoom = 14

// layerOrder is the fixed evaluation priority: natural before artificial.
var layerOrder = [...]Layer{LayerNatural, LayerArtificial}

// codeKeys are the feature property names that may carry the
// classification code, in probe order. The tile sources are inconsistent
// about which key they use.
var codeKeys = [...]string{
	"LandformClassification",
	"landform_classification",
	"code", "type", "class", "classification", "landform",
	"地形分類", "分類コード",
	"CODE", "TYPE", "CLASS",
}

// LayerFetcher retrieves the feature collection of one classification
// layer for a tile address. Implementations do the actual I/O; the
// resolver treats any fetch failure as an empty collection.
type LayerFetcher interface {
	FetchLayer(ctx context.Context, layer Layer, addr geo.TiledAddress) (Collection, error)
}

// Resolver turns a geographic point into a landform label by fetching the
// two classification layers, matching the point against their features
// and resolving the winning feature's code.
type Resolver struct {
	fetcher LayerFetcher
	matcher *Matcher
	zoom    int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithZoom overrides the tile zoom level.
func WithZoom(zoom int) ResolverOption {
	return func(r *Resolver) { r.zoom = zoom }
}

// WithMatcher overrides the geometry matcher.
func WithMatcher(m *Matcher) ResolverOption {
	return func(r *Resolver) { r.matcher = m }
}

// NewResolver creates a Resolver around the given fetcher.
func NewResolver(fetcher LayerFetcher, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		matcher: NewMatcher(),
		zoom:    DefaultZoom,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the landform label for a point. The two layer fetches
// run concurrently and are joined before matching; a failed or empty
// fetch degrades to an empty collection for that layer rather than an
// error. The only error case is an invalid input point.
func (r *Resolver) Resolve(ctx context.Context, p geo.Point) (string, error) {
	addr, err := geo.TileAt(p, r.zoom)
	if err != nil {
		return "", err
	}

	collections := make([]Collection, len(layerOrder))
	g, gctx := errgroup.WithContext(ctx)
	for i, layer := range layerOrder {
		g.Go(func() error {
			coll, err := r.fetcher.FetchLayer(gctx, layer, addr)
			if err != nil {
				zap.L().Debug("landform: layer fetch failed, treating as empty",
					zap.Stringer("layer", layer),
					zap.String("tile", addr.Path()),
					zap.Error(err),
				)
				coll = Collection{Layer: layer}
			}
			collections[i] = coll
			return nil
		})
	}
	// Fetch goroutines never return errors; the join is for completion.
	_ = g.Wait()

	return Label(r.matcher, p, collections), nil
}

// Label resolves the label for a point from already-fetched collections.
// Pure given its inputs.
func Label(m *Matcher, p geo.Point, collections []Collection) string {
	feature, ok := m.Match(p, collections)
	if !ok {
		return LabelNoData
	}

	if code := codeFromProps(feature.Props); code != "" {
		return CodeName(code)
	}
	// A matched feature without a code still tells us which layer it
	// belongs to.
	return genericLabel(feature.Layer)
}

// codeFromProps probes the known property keys for a classification code.
func codeFromProps(props map[string]any) string {
	for _, key := range codeKeys {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch val := v.(type) {
		case string:
			s = strings.TrimSpace(val)
		case float64:
			// GeoJSON numbers decode as float64; codes are integral.
			s = fmt.Sprintf("%.0f", val)
		case int:
			s = fmt.Sprintf("%d", val)
		default:
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

func genericLabel(l Layer) string {
	switch l {
	case LayerArtificial:
		return "terrain data (artificial landform)"
	default:
		return "terrain data (natural landform)"
	}
}
