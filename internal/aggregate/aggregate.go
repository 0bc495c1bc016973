// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate merges per-source signal payloads into a single
// deduplicated, ranked signal set with provenance, and scores the result.
package aggregate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// group accumulates occurrences of one normalized string during merging.
type group struct {
	display     string
	occurrences int
	sources     []types.SourceType
	firstSeen   int
}

// Aggregate merges the successful results into an AggregatedSignal.
// Matching is case-insensitive with collapsed whitespace; the display
// string keeps the casing of the first occurrence. Suggestions and
// questions are ordered by descending occurrence count, ties broken by
// first-seen order. maxSuggestions caps the suggestion list (0 =
// unbounded). A result whose payload cannot be decoded is skipped and
// reported as a warning, never a hard failure.
func Aggregate(results []types.SourceResult, maxSuggestions int) (types.AggregatedSignal, []string) {
	var warnings []string
	suggestions := newMerger()
	questions := newMerger()

	var topics []string
	seenTopics := make(map[string]bool)

	for _, res := range results {
		if res.Status != types.StatusSuccess {
			continue
		}
		var payload types.SignalPayload
		if err := json.Unmarshal(res.Payload, &payload); err != nil {
			warnings = append(warnings, fmt.Sprintf("source %s returned a malformed payload and was skipped", res.Source))
			continue
		}

		for _, s := range payload.Suggestions {
			suggestions.add(s, res.Source)
		}
		for _, q := range payload.Questions {
			questions.add(q, res.Source)
		}
		for _, topic := range payload.Topics {
			key := Normalize(topic)
			if key == "" || seenTopics[key] {
				continue
			}
			seenTopics[key] = true
			topics = append(topics, topic)
		}
	}

	return types.AggregatedSignal{
		Suggestions: suggestions.ranked(maxSuggestions),
		Questions:   questions.ranked(0),
		Topics:      topics,
	}, warnings
}

// Normalize returns the merge key for s: trimmed, lowercased, with
// internal whitespace collapsed to single spaces.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// merger groups strings by normalized key, preserving first-seen order.
type merger struct {
	byKey map[string]*group
	order []*group
}

func newMerger() *merger {
	return &merger{byKey: make(map[string]*group)}
}

func (m *merger) add(display string, src types.SourceType) {
	key := Normalize(display)
	if key == "" {
		return
	}

	g, ok := m.byKey[key]
	if !ok {
		g = &group{display: display, firstSeen: len(m.order)}
		m.byKey[key] = g
		m.order = append(m.order, g)
	}
	g.occurrences++
	if !containsSource(g.sources, src) {
		g.sources = append(g.sources, src)
	}
}

// ranked returns the groups sorted by (occurrences desc, first-seen asc),
// capped at max when max is positive.
func (m *merger) ranked(max int) []types.Suggestion {
	sorted := append([]*group(nil), m.order...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].occurrences != sorted[j].occurrences {
			return sorted[i].occurrences > sorted[j].occurrences
		}
		return sorted[i].firstSeen < sorted[j].firstSeen
	})

	if max > 0 && len(sorted) > max {
		sorted = sorted[:max]
	}

	var out []types.Suggestion
	for _, g := range sorted {
		out = append(out, types.Suggestion{
			Display:     g.display,
			Occurrences: g.occurrences,
			Sources:     g.sources,
		})
	}
	return out
}

func containsSource(list []types.SourceType, st types.SourceType) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}
