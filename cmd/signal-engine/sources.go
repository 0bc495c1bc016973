// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the known signal sources and their configuration",
	Run:   runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) {
	cfg := buildConfig()

	fmt.Printf("%-20s  %-8s  %-12s  %-8s  %s\n",
		"Source", "Enabled", "Rate limit", "API key", "Base URL")
	for _, st := range types.AllSources {
		enabled := "no"
		if cfg.SourceEnabled(st) {
			enabled = "yes"
		}
		limit := "-"
		if interval, ok := cfg.RateLimits[st]; ok && interval > 0 {
			limit = interval.String()
		}
		setting := cfg.SourceSetting(st)
		hasKey := "-"
		if setting.APIKey != "" {
			hasKey = "set"
		}
		base := setting.BaseURL
		if base == "" {
			base = "(default)"
		}
		fmt.Printf("%-20s  %-8s  %-12s  %-8s  %s\n", st, enabled, limit, hasKey, base)
	}
}
