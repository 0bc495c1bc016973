// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aadilmalik70/signal-engine/internal/acquire"
	"github.com/Aadilmalik70/signal-engine/internal/metrics"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire [query...]",
	Short: "Run the signal pipeline for a seed query",
	Long: `Acquire fans the query out to the configured signal sources, merges the
suggestions that arrive before the deadline, and prints the scored result.
Failed or slow sources degrade the result instead of failing the run.`,
	RunE: runAcquire,
}

func init() {
	acquireCmd.Flags().String("mode", string(types.ModeFast), "operating mode: fast or deep")
	acquireCmd.Flags().String("sources", "", "comma-separated source override (default: mode's source set)")
	acquireCmd.Flags().String("locale", "en", "locale hint passed to the sources")
	acquireCmd.Flags().Bool("json", false, "output the result as JSON")
	acquireCmd.Flags().Bool("yaml", false, "output the result as YAML")
	acquireCmd.Flags().Bool("show-metrics", false, "print pipeline counters after the run")
	acquireCmd.Flags().Int("metrics-port", 0, "serve Prometheus metrics on this port during the run")

	rootCmd.AddCommand(acquireCmd)
}

func runAcquire(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a seed query")
	}
	query := strings.Join(args, " ")

	mode, _ := cmd.Flags().GetString("mode")
	locale, _ := cmd.Flags().GetString("locale")
	sourcesFlag, _ := cmd.Flags().GetString("sources")

	var sources []types.SourceType
	if sourcesFlag != "" {
		for _, name := range strings.Split(sourcesFlag, ",") {
			sources = append(sources, types.SourceType(strings.TrimSpace(name)))
		}
	}

	logger := newLogger()
	defer logger.Sync()

	engine, err := acquire.New(buildConfig(), logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := engine.Initialize(ctx); err != nil {
		return err
	}
	defer engine.Shutdown(ctx)

	if port, _ := cmd.Flags().GetInt("metrics-port"); port > 0 {
		srv := metrics.StartServer(port, logger)
		defer srv.Stop(ctx)
	}

	result, err := engine.Acquire(ctx, query, locale, types.Mode(mode), sources)
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	switch {
	case asJSON:
		if err := acquire.FormatJSON(result, os.Stdout); err != nil {
			return err
		}
	case asYAML:
		if err := acquire.FormatYAML(result, os.Stdout); err != nil {
			return err
		}
	default:
		acquire.FormatTable(result, os.Stdout)
	}

	if show, _ := cmd.Flags().GetBool("show-metrics"); show {
		printMetrics(engine.Metrics(), os.Stderr)
	}

	if result.Status == types.RunFailed {
		return fmt.Errorf("no source returned a usable signal")
	}
	return nil
}

func printMetrics(snap metrics.Snapshot, w *os.File) {
	fmt.Fprintf(w, "\nruns: %d", snap.TotalRuns)
	for status, n := range snap.RunsByStatus {
		fmt.Fprintf(w, "  %s: %d", status, n)
	}
	fmt.Fprintln(w)
	for st, sm := range snap.PerSource {
		fmt.Fprintf(w, "%-20s  ok %d  timeout %d  error %d  p50 %v  p95 %v\n",
			st, sm.Successes, sm.Timeouts, sm.Errors, sm.P50, sm.P95)
	}
	if snap.Cache.Hits+snap.Cache.Misses > 0 {
		fmt.Fprintf(w, "cache: %d hits, %d misses (%.0f%%)\n",
			snap.Cache.Hits, snap.Cache.Misses, snap.Cache.HitRate()*100)
	}
}
