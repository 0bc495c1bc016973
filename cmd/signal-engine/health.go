// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aadilmalik70/signal-engine/internal/acquire"
	"github.com/Aadilmalik70/signal-engine/internal/metrics"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the configured signal sources",
	Long: `Health issues a lightweight probe against every enabled source and prints
an overall verdict. The exit code is nonzero when no source is reachable.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
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

	if err := engine.Warm(); err != nil {
		return err
	}

	verdict, probes := engine.Health(ctx)

	fmt.Printf("%-20s  %-10s  %-10s  %s\n", "Source", "State", "Latency", "Detail")
	for st, h := range probes {
		detail := h.Err
		fmt.Printf("%-20s  %-10s  %-10v  %s\n", st, h.State, h.Latency, detail)
	}
	fmt.Printf("\noverall: %s\n", verdict)

	if verdict == metrics.StatusUnhealthy {
		os.Exit(1)
	}
	return nil
}
