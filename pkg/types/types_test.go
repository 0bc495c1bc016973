// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"testing"
	"time"
)

func validCfg() PipelineConfig {
	return PipelineConfig{
		MaxParallelRequests: 2,
		RequestTimeout:      500 * time.Millisecond,
		TotalTimeout:        1 * time.Second,
		EnabledSources:      []SourceType{SourceAutocomplete, SourceSERP},
	}
}

func TestNewQuery(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		locale string
	}{
		{"simple", "Keyword Tips", "keyword tips", ""},
		{"collapses whitespace", "  keyword \t tips  ", "keyword tips", ""},
		{"already normalized", "seo", "seo", "en-US"},
		{"empty", "   ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuery(tt.raw, tt.locale)
			if q.Normalized != tt.want {
				t.Errorf("Normalized = %q, want %q", q.Normalized, tt.want)
			}
			if q.Raw != tt.raw {
				t.Errorf("Raw = %q, want original input preserved", q.Raw)
			}
			if q.Locale != tt.locale {
				t.Errorf("Locale = %q, want %q", q.Locale, tt.locale)
			}
		})
	}
}

func TestQueryIsEmpty(t *testing.T) {
	if !NewQuery("  \t ", "").IsEmpty() {
		t.Error("whitespace-only query should be empty")
	}
	if NewQuery("seo", "").IsEmpty() {
		t.Error("non-empty query reported empty")
	}
}

func TestValidateOK(t *testing.T) {
	if err := validCfg().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PipelineConfig)
		wantSub string
	}{
		{"zero parallelism", func(c *PipelineConfig) { c.MaxParallelRequests = 0 }, "max_parallel_requests"},
		{"zero request timeout", func(c *PipelineConfig) { c.RequestTimeout = 0 }, "request_timeout"},
		{"total below request", func(c *PipelineConfig) { c.TotalTimeout = 100 * time.Millisecond }, "total_timeout"},
		{"empty sources", func(c *PipelineConfig) { c.EnabledSources = nil }, "enabled_sources"},
		{"unknown source", func(c *PipelineConfig) { c.EnabledSources = []SourceType{"trends"} }, "unknown source"},
		{"unknown rate limit key", func(c *PipelineConfig) {
			c.RateLimits = map[SourceType]time.Duration{"bogus": time.Second}
		}, "unknown source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCfg()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestProfileFor(t *testing.T) {
	fast, err := ProfileFor(ModeFast)
	if err != nil {
		t.Fatalf("ProfileFor(fast): %v", err)
	}
	deep, err := ProfileFor(ModeDeep)
	if err != nil {
		t.Fatalf("ProfileFor(deep): %v", err)
	}
	if len(fast.DefaultSources) >= len(deep.DefaultSources) {
		t.Errorf("fast profile should query fewer sources than deep (%d vs %d)",
			len(fast.DefaultSources), len(deep.DefaultSources))
	}
	if fast.TotalTimeout >= deep.TotalTimeout {
		t.Errorf("fast budget %v should be tighter than deep %v", fast.TotalTimeout, deep.TotalTimeout)
	}
	if _, err := ProfileFor("exhaustive"); err == nil {
		t.Error("unknown mode should be rejected")
	}
}

func TestSourceEnabled(t *testing.T) {
	cfg := validCfg()
	if !cfg.SourceEnabled(SourceAutocomplete) {
		t.Error("autocomplete should be enabled")
	}
	if cfg.SourceEnabled(SourceRelatedQuestions) {
		t.Error("related_questions should not be enabled")
	}
}

func TestSucceeded(t *testing.T) {
	r := PipelineResult{
		SourceResults: []SourceResult{
			{Source: SourceAutocomplete, Status: StatusSuccess},
			{Source: SourceSERP, Status: StatusTimeout},
			{Source: SourceRelatedQuestions, Status: StatusError},
		},
	}
	got := r.Succeeded()
	if len(got) != 1 || got[0].Source != SourceAutocomplete {
		t.Errorf("Succeeded() = %v, want only autocomplete", got)
	}
}
