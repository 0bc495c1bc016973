// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics tracks process-wide pipeline counters and latency
// samples per source, exposes them as a non-blocking snapshot and as
// Prometheus collectors, and derives the overall health verdict.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Aadilmalik70/signal-engine/internal/source"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_pipeline_runs_total",
			Help: "Total pipeline runs by overall status",
		},
		[]string{"status"},
	)

	sourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_source_requests_total",
			Help: "Source fetch outcomes by source type and status",
		},
		[]string{"source", "status"},
	)

	sourceLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_source_latency_seconds",
			Help:    "Source fetch latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	cacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_cache_events_total",
			Help: "Signal cache hits, misses, and stores",
		},
		[]string{"event"},
	)
)

// maxLatencySamples bounds the per-source sample window used for
// percentile reporting.
const maxLatencySamples = 512

// SourceMetrics is the snapshot for one source type.
type SourceMetrics struct {
	Successes int64 `json:"successes" yaml:"successes"`
	Timeouts  int64 `json:"timeouts" yaml:"timeouts"`
	Errors    int64 `json:"errors" yaml:"errors"`

	// P50 and P95 are latency percentiles over the recent sample window.
	P50 time.Duration `json:"p50" yaml:"p50"`
	P95 time.Duration `json:"p95" yaml:"p95"`
}

// Attempts returns the total fetches recorded for the source.
func (m SourceMetrics) Attempts() int64 {
	return m.Successes + m.Timeouts + m.Errors
}

// SuccessRate returns the fraction of recorded fetches that succeeded,
// zero when nothing has been recorded.
func (m SourceMetrics) SuccessRate() float64 {
	attempts := m.Attempts()
	if attempts == 0 {
		return 0
	}
	return float64(m.Successes) / float64(attempts)
}

// CacheMetrics is the snapshot of signal cache performance.
type CacheMetrics struct {
	Hits   int64 `json:"hits" yaml:"hits"`
	Misses int64 `json:"misses" yaml:"misses"`
}

// HitRate returns hits/(hits+misses), zero when the cache is unused.
func (m CacheMetrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(m.Hits) / float64(total)
}

// Snapshot is a point-in-time copy of the pipeline counters. Taking one
// never blocks on in-flight runs.
type Snapshot struct {
	TotalRuns    int64                              `json:"total_runs" yaml:"total_runs"`
	RunsByStatus map[types.RunStatus]int64          `json:"runs_by_status" yaml:"runs_by_status"`
	PerSource    map[types.SourceType]SourceMetrics `json:"per_source" yaml:"per_source"`
	Cache        CacheMetrics                       `json:"cache" yaml:"cache"`
}

// sourceStats is the mutable per-source state inside a Recorder.
type sourceStats struct {
	successes int64
	timeouts  int64
	errors    int64
	latencies []time.Duration
}

// Recorder accumulates pipeline counters. It is safe for concurrent use;
// one Recorder is shared by all runs of an engine.
type Recorder struct {
	mu           sync.Mutex
	totalRuns    int64
	runsByStatus map[types.RunStatus]int64
	perSource    map[types.SourceType]*sourceStats
	cache        CacheMetrics
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		runsByStatus: make(map[types.RunStatus]int64),
		perSource:    make(map[types.SourceType]*sourceStats),
	}
}

// RecordRun records one finished pipeline run and its source results.
func (r *Recorder) RecordRun(res *types.PipelineResult) {
	runsTotal.WithLabelValues(string(res.Status)).Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.totalRuns++
	r.runsByStatus[res.Status]++
	for _, sr := range res.SourceResults {
		r.recordSourceLocked(sr)
	}
}

func (r *Recorder) recordSourceLocked(sr types.SourceResult) {
	sourceRequestsTotal.WithLabelValues(string(sr.Source), string(sr.Status)).Inc()
	sourceLatency.WithLabelValues(string(sr.Source)).Observe(sr.Latency.Seconds())

	st := r.perSource[sr.Source]
	if st == nil {
		st = &sourceStats{}
		r.perSource[sr.Source] = st
	}
	switch sr.Status {
	case types.StatusSuccess:
		st.successes++
	case types.StatusTimeout:
		st.timeouts++
	default:
		st.errors++
	}
	st.latencies = append(st.latencies, sr.Latency)
	if len(st.latencies) > maxLatencySamples {
		st.latencies = st.latencies[len(st.latencies)-maxLatencySamples:]
	}
}

// RecordCacheHit counts a cache hit.
func (r *Recorder) RecordCacheHit() {
	cacheEventsTotal.WithLabelValues("hit").Inc()
	r.mu.Lock()
	r.cache.Hits++
	r.mu.Unlock()
}

// RecordCacheMiss counts a cache miss.
func (r *Recorder) RecordCacheMiss() {
	cacheEventsTotal.WithLabelValues("miss").Inc()
	r.mu.Lock()
	r.cache.Misses++
	r.mu.Unlock()
}

// GetSnapshot returns a copy of the current counters.
func (r *Recorder) GetSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		TotalRuns:    r.totalRuns,
		RunsByStatus: make(map[types.RunStatus]int64, len(r.runsByStatus)),
		PerSource:    make(map[types.SourceType]SourceMetrics, len(r.perSource)),
		Cache:        r.cache,
	}
	for status, n := range r.runsByStatus {
		snap.RunsByStatus[status] = n
	}
	for src, st := range r.perSource {
		snap.PerSource[src] = SourceMetrics{
			Successes: st.successes,
			Timeouts:  st.timeouts,
			Errors:    st.errors,
			P50:       percentile(st.latencies, 0.50),
			P95:       percentile(st.latencies, 0.95),
		}
	}
	return snap
}

// percentile returns the p-th percentile of samples, zero when empty.
func percentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// OverallStatus is the aggregate health verdict.
type OverallStatus string

const (
	StatusHealthy   OverallStatus = "healthy"
	StatusDegraded  OverallStatus = "degraded"
	StatusUnhealthy OverallStatus = "unhealthy"
)

// Verdict combines per-source probe results with recent success rates.
// A source counts as down when its probe failed, or when it has recorded
// fetches and none succeeded. Unknown sources with no recorded fetches are
// not counted either way. The verdict is unhealthy when every counted
// source is down, degraded when at least one but not all are, and healthy
// otherwise.
func Verdict(probes map[types.SourceType]source.Health, snap Snapshot) OverallStatus {
	counted, down := 0, 0
	for st, h := range probes {
		sm := snap.PerSource[st]
		switch h.State {
		case source.HealthUnhealthy:
			counted++
			down++
		case source.HealthHealthy:
			counted++
			if sm.Attempts() > 0 && sm.Successes == 0 {
				down++
			}
		default:
			if sm.Attempts() > 0 {
				counted++
				if sm.Successes == 0 {
					down++
				}
			}
		}
	}

	switch {
	case counted > 0 && down == counted:
		return StatusUnhealthy
	case down > 0:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// Server exposes the Prometheus collectors over HTTP.
type Server struct {
	srv *http.Server
}

// StartServer begins serving /metrics on the given port.
func StartServer(port int, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
