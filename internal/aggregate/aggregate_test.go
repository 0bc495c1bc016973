// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

func successResult(t *testing.T, st types.SourceType, payload types.SignalPayload) types.SourceResult {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return types.SourceResult{Source: st, Status: types.StatusSuccess, Payload: raw}
}

func TestAggregateMergesCaseInsensitively(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"Keyword Tips"}}),
		successResult(t, types.SourceSERP, types.SignalPayload{Suggestions: []string{"keyword tips"}}),
	}

	signal, warnings := Aggregate(results, 0)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(signal.Suggestions) != 1 {
		t.Fatalf("len(Suggestions) = %d, want 1 merged entry", len(signal.Suggestions))
	}

	s := signal.Suggestions[0]
	if s.Occurrences != 2 {
		t.Errorf("Occurrences = %d, want 2", s.Occurrences)
	}
	if s.Display != "Keyword Tips" {
		t.Errorf("Display = %q, want first-seen casing", s.Display)
	}
	if len(s.Sources) != 2 {
		t.Errorf("Sources = %v, want both attributed", s.Sources)
	}
}

func TestAggregateCollapsesWhitespace(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"keyword  tips", " keyword tips "}}),
	}
	signal, _ := Aggregate(results, 0)
	if len(signal.Suggestions) != 1 {
		t.Fatalf("len(Suggestions) = %d, want 1", len(signal.Suggestions))
	}
	if signal.Suggestions[0].Occurrences != 2 {
		t.Errorf("Occurrences = %d, want 2", signal.Suggestions[0].Occurrences)
	}
	// Same source twice still attributes one source.
	if len(signal.Suggestions[0].Sources) != 1 {
		t.Errorf("Sources = %v, want one entry", signal.Suggestions[0].Sources)
	}
}

func TestAggregateOrdering(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"alpha", "beta", "gamma"}}),
		successResult(t, types.SourceSERP, types.SignalPayload{Suggestions: []string{"gamma", "beta"}}),
		successResult(t, types.SourceRelatedQuestions, types.SignalPayload{Suggestions: []string{"beta"}}),
	}

	signal, _ := Aggregate(results, 0)
	want := []string{"beta", "gamma", "alpha"} // counts 3, 2, 1
	if len(signal.Suggestions) != len(want) {
		t.Fatalf("len = %d, want %d", len(signal.Suggestions), len(want))
	}
	for i, w := range want {
		if signal.Suggestions[i].Display != w {
			t.Errorf("[%d] = %q, want %q", i, signal.Suggestions[i].Display, w)
		}
	}
}

func TestAggregateTieBreakIsFirstSeen(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"first", "second", "third"}}),
	}
	signal, _ := Aggregate(results, 0)
	for i, want := range []string{"first", "second", "third"} {
		if signal.Suggestions[i].Display != want {
			t.Errorf("[%d] = %q, want %q (first-seen order)", i, signal.Suggestions[i].Display, want)
		}
	}
}

func TestAggregateCap(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"a", "b", "c", "d", "e"}}),
	}
	signal, _ := Aggregate(results, 2)
	if len(signal.Suggestions) != 2 {
		t.Errorf("len = %d, want capped at 2", len(signal.Suggestions))
	}
}

func TestAggregateSkipsMalformedPayload(t *testing.T) {
	results := []types.SourceResult{
		{Source: types.SourceSERP, Status: types.StatusSuccess, Payload: []byte(`{broken`)},
		successResult(t, types.SourceAutocomplete, types.SignalPayload{Suggestions: []string{"ok"}}),
	}

	signal, warnings := Aggregate(results, 0)
	if len(signal.Suggestions) != 1 {
		t.Errorf("len(Suggestions) = %d, want the good source only", len(signal.Suggestions))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "serp") {
		t.Errorf("warnings = %v, want one naming serp", warnings)
	}
}

func TestAggregateIgnoresNonSuccess(t *testing.T) {
	results := []types.SourceResult{
		{Source: types.SourceSERP, Status: types.StatusTimeout},
		{Source: types.SourceAutocomplete, Status: types.StatusError, ErrorKind: types.ErrTransient},
	}
	signal, warnings := Aggregate(results, 0)
	if len(signal.Suggestions) != 0 || len(signal.Questions) != 0 || len(warnings) != 0 {
		t.Errorf("non-success results must contribute nothing, got %+v / %v", signal, warnings)
	}
}

func TestAggregateQuestionsAndTopics(t *testing.T) {
	results := []types.SourceResult{
		successResult(t, types.SourceRelatedQuestions, types.SignalPayload{
			Questions: []string{"What is SEO?", "what is seo?"},
			Topics:    []string{"seo", "SEO", "marketing"},
		}),
	}

	signal, _ := Aggregate(results, 0)
	if len(signal.Questions) != 1 {
		t.Fatalf("len(Questions) = %d, want merged to 1", len(signal.Questions))
	}
	if signal.Questions[0].Occurrences != 2 {
		t.Errorf("question Occurrences = %d, want 2", signal.Questions[0].Occurrences)
	}
	if len(signal.Topics) != 2 {
		t.Errorf("Topics = %v, want case-insensitive dedup to 2", signal.Topics)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Keyword Tips", "keyword tips"},
		{"  keyword \t tips ", "keyword tips"},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
