// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Suggestion is one deduplicated entry in an AggregatedSignal. The display
// string keeps the casing of the first occurrence; merging is performed on
// the normalized form.
type Suggestion struct {
	// Display is the originally-cased text of the first occurrence.
	Display string `json:"display" yaml:"display"`

	// Occurrences counts how many source payload entries merged into this one.
	Occurrences int `json:"occurrences" yaml:"occurrences"`

	// Sources lists the source types that contributed this entry, in the
	// order their results were collected.
	Sources []SourceType `json:"sources" yaml:"sources"`
}

// AggregatedSignal is the merged, ranked output of one pipeline run.
// Suggestions and Questions are ordered by descending occurrence count,
// ties broken by first-seen order.
type AggregatedSignal struct {
	// Suggestions are deduplicated keyword suggestions.
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`

	// Questions are deduplicated related questions.
	Questions []Suggestion `json:"questions" yaml:"questions"`

	// Topics are optional topic/entity hints, deduplicated, first-seen order.
	Topics []string `json:"topics,omitempty" yaml:"topics,omitempty"`
}
