// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Query holds the normalized form of a user-supplied keyword or topic.
// Construct with NewQuery; a Query is immutable once built.
type Query struct {
	// Raw is the original user input, preserved for display and diagnostics.
	Raw string `json:"raw" yaml:"raw"`

	// Normalized is the trimmed, whitespace-collapsed, lowercased form used
	// for request building, caching, and deduplication.
	Normalized string `json:"normalized" yaml:"normalized"`

	// Locale is an optional BCP 47 language tag (e.g. "en-US") forwarded to
	// sources that support localization.
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// NewQuery builds a Query from raw user input. Internal whitespace is
// collapsed to single spaces and the normalized form is lowercased.
func NewQuery(raw, locale string) Query {
	collapsed := strings.Join(strings.Fields(raw), " ")
	return Query{
		Raw:        raw,
		Normalized: strings.ToLower(collapsed),
		Locale:     locale,
	}
}

// IsEmpty reports whether the query contains no searchable text.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}
