package ingest

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wefrigerator/fridge-ingest/internal/fetcher"
	"github.com/wefrigerator/fridge-ingest/internal/observability"
	"github.com/wefrigerator/fridge-ingest/internal/provider"
	"github.com/wefrigerator/fridge-ingest/internal/sink"
)

// Engine runs providers end to end: fetch, process, project, upsert.
type Engine struct {
	registry *provider.Registry
	fetcher  fetcher.Fetcher
	sink     sink.Sink
	runLog   sink.RunLog
	metrics  *observability.Metrics
	clock    clockwork.Clock
	opts     Options
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSink sets the place sink. Without one, non-dry runs fail with
// ErrConfigurationMissing.
func WithSink(s sink.Sink) EngineOption {
	return func(e *Engine) { e.sink = s }
}

// WithRunLog records every non-dry run.
func WithRunLog(l sink.RunLog) EngineOption {
	return func(e *Engine) { e.runLog = l }
}

// WithMetrics reports run metrics.
func WithMetrics(m *observability.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces the wall clock.
func WithClock(c clockwork.Clock) EngineOption {
	return func(e *Engine) { e.clock = c }
}

// WithOptions sets processing options.
func WithOptions(o Options) EngineOption {
	return func(e *Engine) { e.opts = o }
}

// NewEngine creates an Engine over the given registry and fetcher.
func NewEngine(reg *provider.Registry, f fetcher.Fetcher, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		fetcher:  f,
		clock:    clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the provider registry.
func (e *Engine) Registry() *provider.Registry { return e.registry }

// RunOptions tune a single run.
type RunOptions struct {
	// DryRun fetches and processes but skips the source lookup, the
	// upsert and the run log.
	DryRun bool
	// IncludeSites reports sites and clusters for every provider.
	IncludeSites bool
}

// Run executes one provider run. Failures are returned as *RunError.
func (e *Engine) Run(ctx context.Context, p provider.Provider, ro RunOptions) (*Result, error) {
	tag := p.Name()
	traits := p.Traits()
	log := zap.L().With(zap.String("component", "ingest"), zap.String("provider", tag))
	now := e.clock.Now()

	var runID string
	if !ro.DryRun && e.runLog != nil {
		id, err := e.runLog.StartRun(ctx, tag, now)
		if err != nil {
			log.Warn("ingest: failed to start run log", zap.Error(err))
		}
		runID = id
	}

	res, err := e.run(ctx, p, traits, now, ro, log)
	elapsed := e.clock.Since(now)

	outcome := observability.OutcomeSuccess
	stats := observability.RunStats{Provider: tag, DurationSeconds: elapsed.Seconds()}
	switch {
	case err != nil:
		outcome = observability.OutcomeError
		log.Error("ingest: run failed", zap.Error(err), zap.Duration("duration", elapsed))
	case res.Warning != "":
		outcome = observability.OutcomeWarning
	}
	stats.Outcome = outcome
	if res != nil {
		res.RunID = runID
		res.Duration = elapsed
		stats.Sites = res.Upserted
		stats.Dropped = res.Dropped
		stats.Merged = res.Merged
	}
	e.metrics.Observe(stats)

	if runID != "" {
		e.finishRunLog(ctx, log, runID, res, err)
	}
	if err != nil {
		return nil, err
	}

	log.Info("ingest: run complete",
		zap.Int("upserted", res.Upserted),
		zap.Int(res.CountKey, res.Count),
		zap.Int("dropped", res.Dropped),
		zap.Int("merged", res.Merged),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func (e *Engine) run(ctx context.Context, p provider.Provider, traits provider.Traits, now time.Time, ro RunOptions, log *zap.Logger) (*Result, error) {
	tag := p.Name()

	if !ro.DryRun && e.sink == nil {
		return nil, runError(ErrConfigurationMissing, tag, ConfigurationMessage, nil)
	}

	var sourceID string
	if !ro.DryRun {
		id, err := e.sink.SourceID(ctx, tag)
		if err != nil {
			if eris.Is(err, sink.ErrSourceNotFound) {
				return nil, runError(ErrSourceRegistryMiss, tag, traits.Label+" source not found in database", err)
			}
			return nil, runError(ErrSinkUpsert, tag, "Source lookup failed: "+err.Error(), err)
		}
		sourceID = id
	}

	payload, err := e.fetcher.Fetch(ctx, fetcher.Request(p.Request()))
	if err != nil {
		if traits.Optional && ctx.Err() == nil {
			return e.unavailable(p, traits, err, log), nil
		}
		return nil, runError(ErrUpstreamUnavailable, tag, traits.Label+" API failed: "+upstreamReason(err), err)
	}

	out, err := Process(p, payload, now, e.opts)
	if err != nil {
		if traits.Optional {
			return e.unavailable(p, traits, err, log), nil
		}
		return nil, runError(ErrUpstreamUnavailable, tag, traits.Label+" API returned an unreadable payload", err)
	}
	if out.Dropped > 0 {
		log.Debug("ingest: dropped features", zap.Int("dropped", out.Dropped), zap.Int("total", out.Total))
	}

	res := &Result{
		Source:       tag,
		CountKey:     traits.CountKey,
		Count:        out.Total,
		IncludeSites: traits.ReportSites || ro.IncludeSites,
		Sites:        out.Sites,
		Clusters:     out.Clusters,
		Dropped:      out.Dropped,
		Merged:       out.Merged,
		DryRun:       ro.DryRun,
	}
	if traits.ReportFiltered {
		kept := out.Kept
		res.FilteredToLA = &kept
	}

	if ro.DryRun || len(out.Sites) == 0 {
		return res, nil
	}

	rows, err := sink.Project(sourceID, out.Sites, now)
	if err != nil {
		return nil, runError(ErrSinkUpsert, tag, "Database upsert failed: "+err.Error(), err)
	}
	affected, err := e.sink.Upsert(ctx, rows)
	if err != nil {
		return nil, runError(ErrSinkUpsert, tag, "Database upsert failed: "+err.Error(), err)
	}
	log.Debug("ingest: upserted places", zap.Int("rows", len(rows)), zap.Int64("affected", affected))
	res.Upserted = len(rows)

	return res, nil
}

// unavailable is the successful empty result an optional provider reports
// when its upstream cannot be used.
func (e *Engine) unavailable(p provider.Provider, traits provider.Traits, cause error, log *zap.Logger) *Result {
	reason := upstreamReason(cause)
	log.Warn("ingest: optional upstream unavailable", zap.String("reason", reason))
	return &Result{
		Source:   p.Name(),
		CountKey: traits.CountKey,
		Warning:  traits.Label + " API unavailable: " + reason + ". Consider manual curation or alternative data source.",
	}
}

func (e *Engine) finishRunLog(ctx context.Context, log *zap.Logger, runID string, res *Result, runErr error) {
	done := e.clock.Now()
	var err error
	if runErr != nil {
		err = e.runLog.FailRun(context.WithoutCancel(ctx), runID, runErr, done)
	} else {
		err = e.runLog.CompleteRun(context.WithoutCancel(ctx), runID, int64(res.Upserted), done)
	}
	if err != nil {
		log.Warn("ingest: failed to update run log", zap.String("run_id", runID), zap.Error(err))
	}
}

// RunRoute runs the provider registered under an HTTP route segment.
func (e *Engine) RunRoute(ctx context.Context, route string, ro RunOptions) (*Result, error) {
	p, ok := e.registry.ByRoute(route)
	if !ok {
		return nil, eris.Errorf("ingest: no provider for route %q", route)
	}
	return e.Run(ctx, p, ro)
}

// RunOutcome pairs a provider with its run result or error.
type RunOutcome struct {
	Provider string
	Result   *Result
	Err      error
}

// RunMany runs providers concurrently. Runs are independent: one failing
// does not cancel the others. Outcomes keep the order of providers.
func (e *Engine) RunMany(ctx context.Context, providers []provider.Provider, ro RunOptions) []RunOutcome {
	outcomes := make([]RunOutcome, len(providers))
	var g errgroup.Group
	for i, p := range providers {
		g.Go(func() error {
			res, err := e.Run(ctx, p, ro)
			outcomes[i] = RunOutcome{Provider: p.Name(), Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
