package gsi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "riskpoint/1.0"

	defaultCacheSize = 256
	defaultCacheTTL  = 24 * time.Hour

	// The GSI tile service asks for restraint from bulk clients.
	defaultRateLimit = rate.Limit(5)
	defaultBurst     = 10
)

// Client fetches classification tiles over HTTP. It implements
// landform.LayerFetcher.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	layers     LayerSet
	cache      *TileCache
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLayerSet overrides the tile sources.
func WithLayerSet(set LayerSet) Option {
	return func(c *Client) { c.layers = set }
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithCache overrides the tile cache.
func WithCache(cache *TileCache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient creates a Client with the default GSI layer set.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(defaultRateLimit, defaultBurst),
		layers:     DefaultLayerSet(),
		cache:      NewTileCache(defaultCacheSize, defaultCacheTTL),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchLayer implements landform.LayerFetcher. A missing tile (404) or a
// non-GeoJSON response yields an empty collection, not an error; the tile
// pyramid legitimately has holes where no classification exists.
func (c *Client) FetchLayer(ctx context.Context, layer landform.Layer, addr geo.TiledAddress) (landform.Collection, error) {
	spec := c.layers.For(layer)
	empty := landform.Collection{Layer: layer}

	if body := c.cache.Get(spec.Name, addr.Zoom, addr.X, addr.Y); body != nil {
		return decodeCollection(layer, body)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return empty, eris.Wrap(err, "gsi: rate limit")
	}

	url := spec.tileURL(addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return empty, eris.Wrap(err, "gsi: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, eris.Wrapf(err, "gsi: fetch %s", url)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// No tile published at this address.
		return empty, nil
	case resp.StatusCode != http.StatusOK:
		zap.L().Debug("gsi: unexpected tile status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return empty, nil
	}

	if ct := strings.ToLower(resp.Header.Get("Content-Type")); ct != "" && !strings.Contains(ct, "json") {
		zap.L().Debug("gsi: non-JSON tile response",
			zap.String("url", url),
			zap.String("content_type", ct),
		)
		return empty, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, eris.Wrapf(err, "gsi: read %s", url)
	}

	coll, err := decodeCollection(layer, body)
	if err != nil {
		return empty, err
	}
	c.cache.Put(spec.Name, addr.Zoom, addr.X, addr.Y, body)
	return coll, nil
}

// CacheStats reports the tile cache occupancy and hit/miss counts.
func (c *Client) CacheStats() (entries int, hits, misses int64) {
	return c.cache.Stats()
}

// decodeCollection parses a GeoJSON feature collection into the matcher's
// input shape, preserving source order. Features without geometry are
// kept out.
func decodeCollection(layer landform.Layer, body []byte) (landform.Collection, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return landform.Collection{Layer: layer}, eris.Wrap(err, "gsi: decode tile geojson")
	}

	coll := landform.Collection{Layer: layer}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		coll.Features = append(coll.Features, landform.Feature{
			Geometry: f.Geometry,
			Props:    f.Properties,
			Layer:    layer,
		})
	}
	return coll, nil
}
