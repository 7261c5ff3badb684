package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/osaka-bousai/riskpoint/internal/arbiter"
	"github.com/osaka-bousai/riskpoint/internal/resolver"
	"github.com/osaka-bousai/riskpoint/internal/risk"
	"github.com/osaka-bousai/riskpoint/internal/store"
	"github.com/osaka-bousai/riskpoint/pkg/gsi"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "riskpoint.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initTileClient() (*gsi.Client, error) {
	opts := []gsi.Option{
		gsi.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.GSI.TimeoutSecs) * time.Second}),
		gsi.WithRateLimit(rate.Limit(cfg.GSI.RatePerSecond), cfg.GSI.Burst),
		gsi.WithCache(gsi.NewTileCache(cfg.GSI.CacheEntries, time.Duration(cfg.GSI.CacheTTLHours)*time.Hour)),
	}

	if cfg.GSI.LayersFile != "" {
		data, err := os.ReadFile(cfg.GSI.LayersFile)
		if err != nil {
			return nil, eris.Wrapf(err, "read layers file %s", cfg.GSI.LayersFile)
		}
		set, err := gsi.LoadLayerSet(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, gsi.WithLayerSet(set))
	}

	return gsi.NewClient(opts...), nil
}

// loadRiskTable reads the optional tabular risk source. A missing path
// is not an error; lookups then fall back to the generic record.
func loadRiskTable() *risk.Table {
	if cfg.Risk.TablePath == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.Risk.TablePath)
	if err != nil {
		zap.L().Warn("risk table unavailable, using generic fallback",
			zap.String("path", cfg.Risk.TablePath), zap.Error(err))
		return nil
	}
	table, err := risk.NewTable(string(data))
	if err != nil {
		zap.L().Warn("risk table parse failed, using generic fallback",
			zap.String("path", cfg.Risk.TablePath), zap.Error(err))
		return nil
	}
	return table
}

// initPipeline assembles the full resolution chain. The returned cleanup
// closes the store.
func initPipeline(ctx context.Context) (*resolver.Pipeline, func(), error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	tiles, err := initTileClient()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	pl := resolver.New(tiles, store.NewScorer(st), store.NewShelterLookup(st), loadRiskTable(), arbiter.New())
	return pl, func() { st.Close() }, nil
}
