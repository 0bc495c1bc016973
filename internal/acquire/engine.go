// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire runs the signal acquisition pipeline: it fans a query
// out to the configured sources under a bounded worker pool, enforces
// per-source and total deadlines, and folds whatever arrived into a
// single scored result.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Aadilmalik70/signal-engine/internal/aggregate"
	"github.com/Aadilmalik70/signal-engine/internal/cache"
	"github.com/Aadilmalik70/signal-engine/internal/httputil"
	"github.com/Aadilmalik70/signal-engine/internal/metrics"
	"github.com/Aadilmalik70/signal-engine/internal/ratelimit"
	"github.com/Aadilmalik70/signal-engine/internal/source"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

var (
	// ErrNotInitialized is returned by Acquire before Initialize has run.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrShutDown is returned by Acquire after Shutdown.
	ErrShutDown = errors.New("engine has been shut down")
)

// adapterProvider is the slice of the source registry the engine needs.
// Satisfied by *source.Registry; tests swap in a fake.
type adapterProvider interface {
	GetOrCreate(st types.SourceType) (source.Adapter, error)
	HealthCheck(ctx context.Context) map[types.SourceType]source.Health
	Shutdown()
}

// Engine owns the pipeline: the source registry, the shared rate limiter,
// the metrics recorder, and the optional signal cache. One Engine serves
// any number of concurrent Acquire calls.
type Engine struct {
	cfg      types.PipelineConfig
	logger   *zap.Logger
	registry adapterProvider
	limiter  *ratelimit.Limiter
	recorder *metrics.Recorder
	store    *cache.Store

	mu          sync.RWMutex
	initialized bool
	shutDown    bool
}

// New validates cfg and returns an unstarted Engine. Call Initialize
// before Acquire.
func New(cfg types.PipelineConfig, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Initialize builds the source registry, rate limiter, recorder, and
// cache. Calling it on an initialized engine is a no-op.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutDown {
		return ErrShutDown
	}
	if e.initialized {
		return nil
	}

	if e.registry == nil {
		e.registry = source.NewRegistry(e.cfg, httputil.NewClient(e.cfg.HTTPConfig))
	}
	e.limiter = ratelimit.New(e.cfg.RateLimits)
	e.recorder = metrics.NewRecorder()

	if e.cfg.Cache.Enabled {
		store, err := cache.NewStore(e.cfg.Cache)
		if err != nil {
			return fmt.Errorf("opening signal cache: %w", err)
		}
		e.store = store
	}

	e.initialized = true
	e.logger.Info("engine initialized",
		zap.Int("max_parallel", e.cfg.MaxParallelRequests),
		zap.Duration("request_timeout", e.cfg.RequestTimeout),
		zap.Duration("total_timeout", e.cfg.TotalTimeout),
		zap.Bool("cache", e.cfg.Cache.Enabled),
	)
	return nil
}

// Shutdown releases the registry and cache. New Acquire calls fail with
// ErrShutDown; calling Shutdown twice is a no-op.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutDown {
		return nil
	}
	e.shutDown = true
	e.initialized = false

	if e.registry != nil {
		e.registry.Shutdown()
	}
	var err error
	if e.store != nil {
		err = e.store.Close()
		e.store = nil
	}
	e.logger.Info("engine shut down")
	return err
}

// Metrics returns a snapshot of the pipeline counters.
func (e *Engine) Metrics() metrics.Snapshot {
	if e.recorder == nil {
		return metrics.Snapshot{}
	}
	return e.recorder.GetSnapshot()
}

// SetRateLimit adjusts the minimum spacing between calls to st at
// runtime. The new interval applies to runs already in flight.
func (e *Engine) SetRateLimit(st types.SourceType, interval time.Duration) error {
	if !types.KnownSource(st) {
		return fmt.Errorf("unknown source type %q", st)
	}
	e.mu.RLock()
	ready := e.initialized
	e.mu.RUnlock()
	if !ready {
		return ErrNotInitialized
	}
	e.limiter.SetRateLimit(st, interval)
	return nil
}

// Warm constructs adapters for every enabled source so Health probes
// them instead of reporting unknown.
func (e *Engine) Warm() error {
	e.mu.RLock()
	ready := e.initialized
	e.mu.RUnlock()
	if !ready {
		return ErrNotInitialized
	}
	for _, st := range e.cfg.EnabledSources {
		if _, err := e.registry.GetOrCreate(st); err != nil {
			return err
		}
	}
	return nil
}

// Health probes the constructed adapters and combines the probe results
// with recent success rates into an overall verdict.
func (e *Engine) Health(ctx context.Context) (metrics.OverallStatus, map[types.SourceType]source.Health) {
	e.mu.RLock()
	ready := e.initialized
	e.mu.RUnlock()
	if !ready {
		return metrics.StatusUnhealthy, nil
	}
	probes := e.registry.HealthCheck(ctx)
	return metrics.Verdict(probes, e.recorder.GetSnapshot()), probes
}

// Acquire runs the pipeline for one query. It returns an error only for
// caller mistakes (empty query, unknown mode or source, engine not
// initialized); source failures and timeouts are reported inside the
// result instead.
func (e *Engine) Acquire(ctx context.Context, rawQuery, locale string, mode types.Mode, sources []types.SourceType) (*types.PipelineResult, error) {
	e.mu.RLock()
	down, ready := e.shutDown, e.initialized
	e.mu.RUnlock()
	if down {
		return nil, ErrShutDown
	}
	if !ready {
		return nil, ErrNotInitialized
	}

	query := types.NewQuery(rawQuery, locale)
	if query.IsEmpty() {
		return nil, fmt.Errorf("query is empty")
	}

	profile, err := types.ProfileFor(mode)
	if err != nil {
		return nil, err
	}

	resolved, err := e.resolveSources(profile, sources)
	if err != nil {
		return nil, err
	}

	totalTimeout := e.cfg.TotalTimeout
	if profile.TotalTimeout > 0 {
		totalTimeout = profile.TotalTimeout
	}

	var key string
	if e.store != nil {
		key = cache.Key(query, mode, resolved)
		if cached, ok, cerr := e.store.Get(ctx, key); cerr != nil {
			e.logger.Warn("cache read failed", zap.Error(cerr))
		} else if ok {
			e.recorder.RecordCacheHit()
			e.logger.Info("served from cache",
				zap.String("run_id", cached.RunID),
				zap.String("query", query.Normalized),
			)
			return cached, nil
		} else {
			e.recorder.RecordCacheMiss()
		}
	}

	runID := uuid.NewString()
	started := time.Now()
	logger := e.logger.With(
		zap.String("run_id", runID),
		zap.String("query", query.Normalized),
		zap.String("mode", string(mode)),
	)
	logger.Info("run started", zap.Int("sources", len(resolved)))

	runCtx, cancel := context.WithTimeout(ctx, totalTimeout)
	defer cancel()

	results := e.fanOut(runCtx, query, resolved, logger)

	signal, warnings := aggregate.Aggregate(results, e.cfg.MaxSuggestions)

	succeeded := 0
	for _, sr := range results {
		switch sr.Status {
		case types.StatusSuccess:
			succeeded++
		case types.StatusTimeout:
			warnings = append(warnings, fmt.Sprintf("source %s timed out", sr.Source))
		default:
			warnings = append(warnings, fmt.Sprintf("source %s failed: %s", sr.Source, sr.Err))
		}
	}

	status := types.RunFailed
	switch {
	case succeeded == len(resolved):
		status = types.RunComplete
	case succeeded > 0:
		status = types.RunPartial
	}

	result := &types.PipelineResult{
		RunID:         runID,
		Query:         query,
		Mode:          mode,
		Status:        status,
		ExecutionTime: time.Since(started),
		QualityScore:  aggregate.Score(signal, succeeded, len(resolved), e.cfg.TargetSuggestions),
		SourceResults: results,
		Signal:        signal,
		Warnings:      warnings,
	}

	e.recorder.RecordRun(result)
	if e.store != nil && status == types.RunComplete {
		if perr := e.store.Put(ctx, key, result); perr != nil {
			logger.Warn("cache write failed", zap.Error(perr))
		}
	}

	logger.Info("run finished",
		zap.String("status", string(status)),
		zap.Int("succeeded", succeeded),
		zap.Float64("quality_score", result.QualityScore),
		zap.Duration("execution_time", result.ExecutionTime),
	)
	return result, nil
}

// resolveSources applies mode defaults, removes duplicates, and rejects
// unknown or disabled sources. It runs before any network activity.
func (e *Engine) resolveSources(profile types.ModeProfile, requested []types.SourceType) ([]types.SourceType, error) {
	if len(requested) == 0 {
		requested = profile.DefaultSources
	}

	seen := make(map[types.SourceType]bool, len(requested))
	var resolved []types.SourceType
	for _, st := range requested {
		if !types.KnownSource(st) {
			return nil, fmt.Errorf("unknown source type %q", st)
		}
		if !e.cfg.SourceEnabled(st) {
			return nil, fmt.Errorf("source %q is not enabled", st)
		}
		if seen[st] {
			continue
		}
		seen[st] = true
		resolved = append(resolved, st)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no sources to query")
	}
	return resolved, nil
}

// fanOut fetches every resolved source under the worker pool and returns
// one result per source in completion order. Every task produces exactly
// one result even when the run deadline expires before it starts.
func (e *Engine) fanOut(ctx context.Context, query types.Query, resolved []types.SourceType, logger *zap.Logger) []types.SourceResult {
	ch := make(chan types.SourceResult, len(resolved))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallelRequests)

	for _, st := range resolved {
		st := st
		g.Go(func() error {
			ch <- e.fetchOne(gctx, st, query, logger)
			return nil
		})
	}
	g.Wait()
	close(ch)

	results := make([]types.SourceResult, 0, len(resolved))
	for sr := range ch {
		results = append(results, sr)
	}
	return results
}

// fetchOne runs a single source fetch: rate limiter gate, per-request
// deadline, and at most one retry for transient failures when the run
// budget allows it.
func (e *Engine) fetchOne(ctx context.Context, st types.SourceType, query types.Query, logger *zap.Logger) types.SourceResult {
	started := time.Now()

	adapter, err := e.registry.GetOrCreate(st)
	if err != nil {
		return types.SourceResult{
			Source:    st,
			Status:    types.StatusError,
			Latency:   time.Since(started),
			ErrorKind: types.ErrUnreachable,
			Err:       err.Error(),
			Attempts:  1,
		}
	}

	res := e.attempt(ctx, adapter, st, query)
	res.Attempts = 1

	if res.Status == types.StatusError && res.ErrorKind == types.ErrTransient && e.budgetRemains(ctx) {
		logger.Debug("retrying transient failure", zap.String("source", string(st)))
		retry := e.attempt(ctx, adapter, st, query)
		retry.Attempts = 2
		res = retry
	}

	res.Latency = time.Since(started)
	return res
}

// attempt performs one gated fetch against the adapter.
func (e *Engine) attempt(ctx context.Context, adapter source.Adapter, st types.SourceType, query types.Query) types.SourceResult {
	if err := e.limiter.WaitIfNeeded(ctx, st); err != nil {
		// The run deadline expired while waiting for a rate limit slot.
		return types.SourceResult{
			Source: st,
			Status: types.StatusTimeout,
			Err:    err.Error(),
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()
	return adapter.Fetch(fetchCtx, query)
}

// budgetRemains reports whether enough of the run deadline is left to be
// worth issuing a retry.
func (e *Engine) budgetRemains(ctx context.Context) bool {
	deadline, ok := ctx.Deadline()
	if !ok {
		return true
	}
	return time.Until(deadline) > 50*time.Millisecond
}
