// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// SourceType identifies an external signal provider.
type SourceType string

const (
	// SourceAutocomplete is the autocomplete/suggestion service.
	SourceAutocomplete SourceType = "autocomplete"

	// SourceRelatedQuestions is the related-questions service.
	SourceRelatedQuestions SourceType = "related_questions"

	// SourceSERP is the search-result snippet service.
	SourceSERP SourceType = "serp"
)

// AllSources lists every source type the engine knows about.
var AllSources = []SourceType{SourceAutocomplete, SourceRelatedQuestions, SourceSERP}

// KnownSource reports whether st is one of the defined source types.
func KnownSource(st SourceType) bool {
	for _, s := range AllSources {
		if s == st {
			return true
		}
	}
	return false
}

// SourceStatus is the outcome of one source fetch within a run.
type SourceStatus string

const (
	StatusSuccess SourceStatus = "success"
	StatusTimeout SourceStatus = "timeout"
	StatusError   SourceStatus = "error"
)

// ErrorKind classifies a failed source fetch.
type ErrorKind string

const (
	// ErrTransient covers retryable failures such as 5xx responses.
	ErrTransient ErrorKind = "transient"

	// ErrRateLimited covers HTTP 429 and provider quota rejections.
	ErrRateLimited ErrorKind = "rate_limited"

	// ErrMalformed covers undecodable or structurally invalid responses.
	ErrMalformed ErrorKind = "malformed"

	// ErrUnreachable covers connection, DNS, and TLS failures.
	ErrUnreachable ErrorKind = "unreachable"
)

// SourceResult is the canonical outcome of one source fetch. It is created
// exactly once per source per run and never mutated afterwards.
type SourceResult struct {
	// Source identifies the adapter that produced this result.
	Source SourceType `json:"source" yaml:"source"`

	// Status is the fetch outcome.
	Status SourceStatus `json:"status" yaml:"status"`

	// Payload is the adapter's extracted signal data, opaque to the engine.
	// Only the aggregator decodes it (as a SignalPayload).
	Payload json.RawMessage `json:"payload,omitempty" yaml:"payload,omitempty"`

	// Latency is the wall-clock duration of the fetch, including the retry
	// when one was issued.
	Latency time.Duration `json:"latency" yaml:"latency"`

	// ErrorKind classifies the failure when Status is "error".
	ErrorKind ErrorKind `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Err is the failure message when Status is not "success".
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// Attempts counts fetch attempts (2 when the engine retried a
	// transient failure).
	Attempts int `json:"attempts" yaml:"attempts"`
}

// SignalPayload is the envelope adapters marshal into SourceResult.Payload.
type SignalPayload struct {
	// Suggestions are keyword suggestion strings in source order.
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`

	// Questions are related-question strings in source order.
	Questions []string `json:"questions,omitempty" yaml:"questions,omitempty"`

	// Topics are optional topic or entity hints.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}
