package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/wefrigerator/fridge-ingest/internal/config"
	"github.com/wefrigerator/fridge-ingest/internal/fetcher"
	"github.com/wefrigerator/fridge-ingest/internal/geo"
	"github.com/wefrigerator/fridge-ingest/internal/ingest"
	"github.com/wefrigerator/fridge-ingest/internal/observability"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
	"github.com/wefrigerator/fridge-ingest/internal/sink"
)

// ingestEnv holds the store, registry and engine needed by the serve,
// ingest and reconcile commands.
type ingestEnv struct {
	Store    sink.Store // nil when the store is not configured
	Engine   *ingest.Engine
	Registry *provider.Registry
}

// Close releases resources held by the environment.
func (e *ingestEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv builds the provider registry and engine. With needStore, the
// store is opened and migrated; a missing store configuration is logged and
// left for each run to report. Callers should defer env.Close().
func initEnv(ctx context.Context, needStore bool, reg prometheus.Registerer) (*ingestEnv, error) {
	registry := buildRegistry(cfg)
	opts := []ingest.EngineOption{
		ingest.WithOptions(ingest.Options{MismatchM: cfg.Dedupe.MismatchM}),
		ingest.WithMetrics(observability.NewMetrics(reg)),
	}

	env := &ingestEnv{Registry: registry}
	if needStore {
		st, err := initStore(ctx)
		switch {
		case eris.Is(err, sink.ErrNotConfigured):
			zap.L().Warn("external store not configured, runs will fail until EXTERNAL_STORE_URL and EXTERNAL_STORE_SERVICE_KEY are set")
		case err != nil:
			return nil, err
		default:
			env.Store = st
			opts = append(opts, ingest.WithSink(st), ingest.WithRunLog(st))
		}
	}

	env.Engine = ingest.NewEngine(registry, newFetcher(cfg.Fetch), opts...)
	return env, nil
}

// initStore opens and migrates the configured store.
func initStore(ctx context.Context) (sink.Store, error) {
	st, err := sink.Open(ctx, storeConfig(cfg.Store))
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func storeConfig(c config.StoreConfig) sink.Config {
	return sink.Config{
		Driver:     c.Driver,
		URL:        c.URL,
		ServiceKey: c.ServiceKey,
		MaxConns:   c.MaxConns,
	}
}

// buildRegistry registers the providers in trigger order.
func buildRegistry(c *config.Config) *provider.Registry {
	bounds := geo.BBox{
		MinLat: c.Bounds.MinLat,
		MaxLat: c.Bounds.MaxLat,
		MinLng: c.Bounds.MinLng,
		MaxLng: c.Bounds.MaxLng,
	}

	reg := provider.NewRegistry()
	reg.Register(provider.NewArcGIS(c.Providers.ArcGISURL, c.Dedupe.DefaultThresholdM))
	reg.Register(provider.NewOverpass(c.Providers.OverpassURL, c.Providers.OverpassQuery, c.Dedupe.FridgeThresholdM))
	reg.Register(provider.NewFreedge(c.Providers.FreedgeURL, c.Providers.FreedgeUserAgent, bounds, c.Dedupe.FridgeThresholdM))
	return reg
}

func newFetcher(c config.FetchConfig) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: c.UserAgent,
		Timeout:   time.Duration(c.TimeoutSecs) * time.Second,
	})
}
