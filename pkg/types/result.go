// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

const (
	// RunComplete means every resolved source succeeded.
	RunComplete RunStatus = "complete"

	// RunPartial means at least one, but not all, sources succeeded.
	// A partial result is valid and usable.
	RunPartial RunStatus = "partial"

	// RunFailed means no source succeeded. This is the only status callers
	// should treat as a hard failure.
	RunFailed RunStatus = "failed"
)

// PipelineResult is the single output of one Acquire call. It is created
// once by the engine and read-only to the caller.
type PipelineResult struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Query is the query the run was executed for.
	Query Query `json:"query" yaml:"query"`

	// Mode is the operating profile the run used.
	Mode Mode `json:"mode" yaml:"mode"`

	// Status is the overall run outcome.
	Status RunStatus `json:"status" yaml:"status"`

	// ExecutionTime is the total wall-clock duration of the run.
	ExecutionTime time.Duration `json:"execution_time" yaml:"execution_time"`

	// QualityScore is the confidence score in [0, 1] derived from source
	// coverage, result richness, and cross-source corroboration.
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// SourceResults holds one entry per resolved source, in completion order.
	SourceResults []SourceResult `json:"source_results" yaml:"source_results"`

	// Signal is the merged, ranked signal set.
	Signal AggregatedSignal `json:"signal" yaml:"signal"`

	// Warnings lists human-readable per-source problems
	// (e.g. "source serp timed out").
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// FromCache reports whether the result was served from the signal cache.
	FromCache bool `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`
}

// Succeeded returns the results with status "success".
func (r *PipelineResult) Succeeded() []SourceResult {
	var out []SourceResult
	for _, sr := range r.SourceResults {
		if sr.Status == StatusSuccess {
			out = append(out, sr)
		}
	}
	return out
}
