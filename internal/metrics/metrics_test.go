// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"testing"
	"time"

	"github.com/Aadilmalik70/signal-engine/internal/source"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

func result(status types.RunStatus, sources ...types.SourceResult) *types.PipelineResult {
	return &types.PipelineResult{
		RunID:         "run",
		Status:        status,
		SourceResults: sources,
	}
}

func TestRecorderCountsRuns(t *testing.T) {
	r := NewRecorder()
	r.RecordRun(result(types.RunComplete))
	r.RecordRun(result(types.RunComplete))
	r.RecordRun(result(types.RunPartial))
	r.RecordRun(result(types.RunFailed))

	snap := r.GetSnapshot()
	if snap.TotalRuns != 4 {
		t.Fatalf("TotalRuns = %d, want 4", snap.TotalRuns)
	}
	if snap.RunsByStatus[types.RunComplete] != 2 {
		t.Errorf("complete runs = %d, want 2", snap.RunsByStatus[types.RunComplete])
	}
	if snap.RunsByStatus[types.RunPartial] != 1 {
		t.Errorf("partial runs = %d, want 1", snap.RunsByStatus[types.RunPartial])
	}
	if snap.RunsByStatus[types.RunFailed] != 1 {
		t.Errorf("failed runs = %d, want 1", snap.RunsByStatus[types.RunFailed])
	}
}

func TestRecorderPerSourceCounters(t *testing.T) {
	r := NewRecorder()
	r.RecordRun(result(types.RunPartial,
		types.SourceResult{Source: types.SourceAutocomplete, Status: types.StatusSuccess, Latency: 10 * time.Millisecond},
		types.SourceResult{Source: types.SourceSERP, Status: types.StatusTimeout, Latency: time.Second},
	))
	r.RecordRun(result(types.RunPartial,
		types.SourceResult{Source: types.SourceAutocomplete, Status: types.StatusError, Latency: 5 * time.Millisecond},
	))

	snap := r.GetSnapshot()
	ac := snap.PerSource[types.SourceAutocomplete]
	if ac.Successes != 1 || ac.Errors != 1 || ac.Timeouts != 0 {
		t.Errorf("autocomplete counters = %+v, want 1 success, 1 error", ac)
	}
	if ac.Attempts() != 2 {
		t.Errorf("autocomplete attempts = %d, want 2", ac.Attempts())
	}
	if rate := ac.SuccessRate(); rate != 0.5 {
		t.Errorf("autocomplete success rate = %v, want 0.5", rate)
	}
	serp := snap.PerSource[types.SourceSERP]
	if serp.Timeouts != 1 {
		t.Errorf("serp timeouts = %d, want 1", serp.Timeouts)
	}
}

func TestRecorderLatencyPercentiles(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.RecordRun(result(types.RunComplete, types.SourceResult{
			Source:  types.SourceAutocomplete,
			Status:  types.StatusSuccess,
			Latency: time.Duration(i) * time.Millisecond,
		}))
	}

	snap := r.GetSnapshot()
	ac := snap.PerSource[types.SourceAutocomplete]
	if ac.P50 < 45*time.Millisecond || ac.P50 > 55*time.Millisecond {
		t.Errorf("P50 = %v, want near 50ms", ac.P50)
	}
	if ac.P95 < 90*time.Millisecond || ac.P95 > 100*time.Millisecond {
		t.Errorf("P95 = %v, want near 95ms", ac.P95)
	}
}

func TestRecorderCacheCounters(t *testing.T) {
	r := NewRecorder()
	r.RecordCacheHit()
	r.RecordCacheHit()
	r.RecordCacheMiss()

	snap := r.GetSnapshot()
	if snap.Cache.Hits != 2 || snap.Cache.Misses != 1 {
		t.Fatalf("cache = %+v, want 2 hits, 1 miss", snap.Cache)
	}
	want := 2.0 / 3.0
	if got := snap.Cache.HitRate(); got < want-0.001 || got > want+0.001 {
		t.Errorf("hit rate = %v, want %v", got, want)
	}
}

func TestCacheHitRateEmpty(t *testing.T) {
	var m CacheMetrics
	if got := m.HitRate(); got != 0 {
		t.Errorf("empty hit rate = %v, want 0", got)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewRecorder()
	r.RecordRun(result(types.RunComplete, types.SourceResult{
		Source: types.SourceAutocomplete,
		Status: types.StatusSuccess,
	}))

	snap := r.GetSnapshot()
	snap.RunsByStatus[types.RunFailed] = 99
	snap.PerSource[types.SourceSERP] = SourceMetrics{Errors: 99}

	fresh := r.GetSnapshot()
	if fresh.RunsByStatus[types.RunFailed] != 0 {
		t.Error("mutating a snapshot leaked into the recorder")
	}
	if _, ok := fresh.PerSource[types.SourceSERP]; ok {
		t.Error("mutating a snapshot leaked a source into the recorder")
	}
}

func TestVerdict(t *testing.T) {
	healthy := source.Health{State: source.HealthHealthy}
	down := source.Health{State: source.HealthUnhealthy}
	unknown := source.Health{State: source.HealthUnknown}

	tests := []struct {
		name   string
		probes map[types.SourceType]source.Health
		snap   Snapshot
		want   OverallStatus
	}{
		{
			name: "all healthy",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: healthy,
				types.SourceSERP:         healthy,
			},
			want: StatusHealthy,
		},
		{
			name: "one down",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: healthy,
				types.SourceSERP:         down,
			},
			want: StatusDegraded,
		},
		{
			name: "all down",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: down,
				types.SourceSERP:         down,
			},
			want: StatusUnhealthy,
		},
		{
			name: "unknown sources with no traffic are not counted",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: unknown,
				types.SourceSERP:         unknown,
			},
			want: StatusHealthy,
		},
		{
			name: "healthy probe but all fetches failing counts as down",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: healthy,
				types.SourceSERP:         healthy,
			},
			snap: Snapshot{PerSource: map[types.SourceType]SourceMetrics{
				types.SourceSERP: {Errors: 5},
			}},
			want: StatusDegraded,
		},
		{
			name: "unknown probe with failing traffic counts as down",
			probes: map[types.SourceType]source.Health{
				types.SourceAutocomplete: unknown,
			},
			snap: Snapshot{PerSource: map[types.SourceType]SourceMetrics{
				types.SourceAutocomplete: {Timeouts: 3},
			}},
			want: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verdict(tt.probes, tt.snap); got != tt.want {
				t.Errorf("Verdict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile of empty = %v, want 0", got)
	}
}
