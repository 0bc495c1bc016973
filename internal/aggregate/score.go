// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import "github.com/Aadilmalik70/signal-engine/pkg/types"

// Scoring weights. Coverage dominates: a run where only one source
// responded scores lower than a corroborated multi-source run even when
// the lone source returned many suggestions. The exact values are tuning
// knobs, not contracts.
const (
	coverageWeight      = 0.6
	richnessWeight      = 0.3
	corroborationWeight = 0.1

	defaultTargetSuggestions = 10
)

// Score computes the quality score in [0, 1] for a run: weighted source
// coverage, suggestion richness against the target count, and a bonus when
// at least two sources agree on at least one suggestion.
func Score(signal types.AggregatedSignal, succeeded, enabled, targetSuggestions int) float64 {
	if enabled <= 0 {
		return 0
	}
	if targetSuggestions <= 0 {
		targetSuggestions = defaultTargetSuggestions
	}

	coverage := float64(succeeded) / float64(enabled)

	richness := float64(len(signal.Suggestions)) / float64(targetSuggestions)
	if richness > 1 {
		richness = 1
	}

	corroboration := 0.0
	for _, s := range signal.Suggestions {
		if len(s.Sources) >= 2 {
			corroboration = 1.0
			break
		}
	}

	score := coverageWeight*coverage + richnessWeight*richness + corroborationWeight*corroboration
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
