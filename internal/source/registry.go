// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// HealthState is the probe verdict for one source.
type HealthState string

const (
	// HealthHealthy means the probe succeeded.
	HealthHealthy HealthState = "healthy"

	// HealthUnhealthy means the probe failed.
	HealthUnhealthy HealthState = "unhealthy"

	// HealthUnknown means the adapter has never been constructed, so no
	// probe was issued.
	HealthUnknown HealthState = "unknown"
)

// Health is the result of probing one source.
type Health struct {
	// State is the probe verdict.
	State HealthState `json:"state" yaml:"state"`

	// Latency is the probe duration. Zero when State is "unknown".
	Latency time.Duration `json:"latency,omitempty" yaml:"latency,omitempty"`

	// Err is the probe failure message, when unhealthy.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Registry lazily constructs and caches one adapter per source type for
// the process lifetime. Adapter construction is guarded by a mutex; reads
// of already-published adapters take only the read lock.
type Registry struct {
	cfg    types.PipelineConfig
	client *http.Client

	mu       sync.RWMutex
	adapters map[types.SourceType]Adapter
}

// NewRegistry builds a Registry. All adapters share the given HTTP client.
func NewRegistry(cfg types.PipelineConfig, client *http.Client) *Registry {
	return &Registry{
		cfg:      cfg,
		client:   client,
		adapters: make(map[types.SourceType]Adapter),
	}
}

// GetOrCreate returns the cached adapter for st, constructing it on first
// use. Unknown source types are an error.
func (r *Registry) GetOrCreate(st types.SourceType) (Adapter, error) {
	r.mu.RLock()
	a, ok := r.adapters[st]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.adapters[st]; ok {
		return a, nil
	}

	a, err := r.build(st)
	if err != nil {
		return nil, err
	}
	r.adapters[st] = a
	return a, nil
}

func (r *Registry) build(st types.SourceType) (Adapter, error) {
	sc := r.cfg.SourceSetting(st)
	switch st {
	case types.SourceAutocomplete:
		return &AutocompleteAdapter{Client: r.client, BaseURL: sc.BaseURL, APIKey: sc.APIKey, UserAgent: r.cfg.UserAgent}, nil
	case types.SourceRelatedQuestions:
		return &QuestionsAdapter{Client: r.client, BaseURL: sc.BaseURL, APIKey: sc.APIKey, UserAgent: r.cfg.UserAgent}, nil
	case types.SourceSERP:
		return &SERPAdapter{Client: r.client, BaseURL: sc.BaseURL, APIKey: sc.APIKey, UserAgent: r.cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("no adapter for source type %q", st)
	}
}

// Constructed returns the source types with an instantiated adapter.
func (r *Registry) Constructed() []types.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.SourceType, 0, len(r.adapters))
	for st := range r.adapters {
		out = append(out, st)
	}
	return out
}

// HealthCheck probes every enabled source. Sources whose adapter has never
// been constructed are reported as unknown rather than unhealthy; no
// adapter is constructed as a side effect.
func (r *Registry) HealthCheck(ctx context.Context) map[types.SourceType]Health {
	out := make(map[types.SourceType]Health, len(r.cfg.EnabledSources))
	for _, st := range r.cfg.EnabledSources {
		r.mu.RLock()
		a, ok := r.adapters[st]
		r.mu.RUnlock()

		if !ok {
			out[st] = Health{State: HealthUnknown}
			continue
		}

		started := time.Now()
		err := a.Probe(ctx)
		h := Health{Latency: time.Since(started)}
		if err != nil {
			h.State = HealthUnhealthy
			h.Err = err.Error()
		} else {
			h.State = HealthHealthy
		}
		out[st] = h
	}
	return out
}

// Shutdown drops all cached adapters and closes idle connections. The
// registry can be reused after a subsequent GetOrCreate, but the engine
// treats shutdown as terminal.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	r.adapters = make(map[types.SourceType]Adapter)
	r.mu.Unlock()
	r.client.CloseIdleConnections()
}
