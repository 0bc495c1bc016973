// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// FormatTable writes a run result as a human-readable table to w.
func FormatTable(res *types.PipelineResult, w io.Writer) {
	fmt.Fprintf(w, "Run %s  [%s/%s]  score %.2f  in %v\n",
		res.RunID, res.Mode, res.Status, res.QualityScore, res.ExecutionTime.Round(time.Millisecond))
	if res.FromCache {
		fmt.Fprintln(w, "(served from cache)")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-20s  %-8s  %-10s  %s\n", "Source", "Status", "Latency", "Detail")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, sr := range res.SourceResults {
		detail := ""
		if sr.Err != "" {
			detail = truncate(sr.Err, 40)
		}
		fmt.Fprintf(w, "%-20s  %-8s  %-10v  %s\n",
			sr.Source, sr.Status, sr.Latency.Round(time.Millisecond), detail)
	}

	if len(res.Signal.Suggestions) > 0 {
		fmt.Fprintf(w, "\n%-4s  %-50s  %-6s  %s\n", "Rank", "Suggestion", "Count", "Sources")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for i, s := range res.Signal.Suggestions {
			names := make([]string, len(s.Sources))
			for j, st := range s.Sources {
				names[j] = string(st)
			}
			fmt.Fprintf(w, "%-4d  %-50s  %-6d  %s\n",
				i+1, truncate(s.Display, 50), s.Occurrences, strings.Join(names, ","))
		}
	}

	if len(res.Signal.Questions) > 0 {
		fmt.Fprintln(w, "\nQuestions:")
		for _, q := range res.Signal.Questions {
			fmt.Fprintf(w, "  - %s\n", q.Display)
		}
	}
	if len(res.Signal.Topics) > 0 {
		fmt.Fprintf(w, "\nTopics: %s\n", strings.Join(res.Signal.Topics, ", "))
	}

	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "\nwarning: %s", warning)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w)
	}
}

// FormatJSON writes a run result as indented JSON to w.
func FormatJSON(res *types.PipelineResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// FormatYAML writes a run result as YAML to w.
func FormatYAML(res *types.PipelineResult, w io.Writer) error {
	data, err := yaml.Marshal(res)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
