// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the signal-engine
// pipeline: queries, per-source results, aggregated signals, run results,
// and configuration.
package types

import (
	"fmt"
	"time"
)

// Mode is an operating profile selecting a default source set and a total
// time budget. It does not change aggregation or scoring behavior.
type Mode string

const (
	// ModeFast queries the low-latency sources under a tight budget.
	ModeFast Mode = "fast"

	// ModeDeep queries every enabled source under a looser budget.
	ModeDeep Mode = "deep"
)

// ModeProfile holds the per-mode defaults applied when the caller does not
// specify an explicit source set.
type ModeProfile struct {
	// DefaultSources is the source set used when Acquire receives none.
	DefaultSources []SourceType

	// TotalTimeout overrides PipelineConfig.TotalTimeout when positive.
	TotalTimeout time.Duration
}

// modeProfiles is the closed mode table. Validated at startup; duck-typed
// per-mode dictionaries are deliberately not supported.
var modeProfiles = map[Mode]ModeProfile{
	ModeFast: {
		DefaultSources: []SourceType{SourceAutocomplete, SourceRelatedQuestions},
		TotalTimeout:   5 * time.Second,
	},
	ModeDeep: {
		DefaultSources: []SourceType{SourceAutocomplete, SourceRelatedQuestions, SourceSERP},
		TotalTimeout:   15 * time.Second,
	},
}

// ProfileFor returns the profile for mode, or an error for unknown modes.
func ProfileFor(mode Mode) (ModeProfile, error) {
	p, ok := modeProfiles[mode]
	if !ok {
		return ModeProfile{}, fmt.Errorf("unknown mode %q", mode)
	}
	return p, nil
}

// HTTPConfig holds shared HTTP settings used by source adapters.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout. The engine's per-task deadline is
	// always tighter, so this is a transport-level backstop.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with outbound requests
	// (e.g. "signal-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CacheConfig holds settings for the SQLite signal cache.
type CacheConfig struct {
	// Enabled turns the cache on. When false no cache file is created.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the cache database file.
	Dir string `json:"dir" yaml:"dir"`

	// TTL is how long a cached result stays valid (default 15m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// SourceConfig holds per-source adapter settings.
type SourceConfig struct {
	// BaseURL overrides the adapter's default endpoint. Used for tests and
	// self-hosted mirrors.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates against the provider, when required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// PipelineConfig groups all settings for the acquisition engine. It is
// assembled by the caller (CLI or embedding service) before the engine is
// constructed; the engine itself reads no ambient configuration.
type PipelineConfig struct {
	// MaxParallelRequests bounds in-flight source fetches per run (min 1).
	MaxParallelRequests int `json:"max_parallel_requests" yaml:"max_parallel_requests"`

	// RequestTimeout is the per-source fetch deadline.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// TotalTimeout is the pipeline-wide deadline. Must be at least
	// RequestTimeout.
	TotalTimeout time.Duration `json:"total_timeout" yaml:"total_timeout"`

	// EnabledSources is the non-empty set of sources the engine may query.
	EnabledSources []SourceType `json:"enabled_sources" yaml:"enabled_sources"`

	// MaxSuggestions caps the aggregated suggestion list (0 = unbounded).
	MaxSuggestions int `json:"max_suggestions" yaml:"max_suggestions"`

	// TargetSuggestions is the richness target used by the quality scorer
	// (default 10).
	TargetSuggestions int `json:"target_suggestions" yaml:"target_suggestions"`

	// RateLimits maps a source type to the minimum interval between calls
	// to that source, shared across concurrent runs.
	RateLimits map[SourceType]time.Duration `json:"rate_limits" yaml:"rate_limits"`

	// Sources holds per-source adapter settings keyed by source type.
	Sources map[SourceType]SourceConfig `json:"sources" yaml:"sources"`

	HTTPConfig `yaml:",inline"`

	// Cache configures the signal cache.
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// DefaultConfig returns a PipelineConfig with conservative defaults and
// every source enabled.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		MaxParallelRequests: 3,
		RequestTimeout:      4 * time.Second,
		TotalTimeout:        12 * time.Second,
		EnabledSources:      append([]SourceType(nil), AllSources...),
		TargetSuggestions:   10,
		RateLimits: map[SourceType]time.Duration{
			SourceAutocomplete:     200 * time.Millisecond,
			SourceRelatedQuestions: 500 * time.Millisecond,
			SourceSERP:             1 * time.Second,
		},
		HTTPConfig: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "signal-engine/0.1",
		},
		Cache: CacheConfig{TTL: 15 * time.Minute},
	}
}

// Validate checks the configuration invariants. It runs before any I/O:
// an invalid configuration never reaches the network.
func (c PipelineConfig) Validate() error {
	if c.MaxParallelRequests < 1 {
		return fmt.Errorf("max_parallel_requests must be >= 1, got %d", c.MaxParallelRequests)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	if c.TotalTimeout < c.RequestTimeout {
		return fmt.Errorf("total_timeout %v must be >= request_timeout %v", c.TotalTimeout, c.RequestTimeout)
	}
	if len(c.EnabledSources) == 0 {
		return fmt.Errorf("enabled_sources must not be empty")
	}
	for _, st := range c.EnabledSources {
		if !KnownSource(st) {
			return fmt.Errorf("unknown source type %q", st)
		}
	}
	for st := range c.RateLimits {
		if !KnownSource(st) {
			return fmt.Errorf("rate limit configured for unknown source type %q", st)
		}
	}
	// The mode table is static, but an entry referencing a removed source
	// type would otherwise surface only at Acquire time.
	for mode, profile := range modeProfiles {
		for _, st := range profile.DefaultSources {
			if !KnownSource(st) {
				return fmt.Errorf("mode %q references unknown source type %q", mode, st)
			}
		}
	}
	return nil
}

// SourceEnabled reports whether st is in EnabledSources.
func (c PipelineConfig) SourceEnabled(st SourceType) bool {
	for _, s := range c.EnabledSources {
		if s == st {
			return true
		}
	}
	return false
}

// SourceSetting returns the per-source settings for st, zero-valued when
// none are configured.
func (c PipelineConfig) SourceSetting(st SourceType) SourceConfig {
	if c.Sources == nil {
		return SourceConfig{}
	}
	return c.Sources[st]
}
