// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the signal-engine CLI. It wires the
// acquisition pipeline to flags, config files, and the secrets directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Aadilmalik70/signal-engine/internal/secrets"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretKeyFiles maps a source type to its key file in .secrets/.
var secretKeyFiles = map[types.SourceType]string{
	types.SourceAutocomplete:     "suggest-api-key",
	types.SourceRelatedQuestions: "questions-api-key",
	types.SourceSERP:             "serp-api-key",
}

// rootCmd is the base command for the signal-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "signal-engine",
	Short: "Keyword signal acquisition from autocomplete, questions, and SERP sources",
	Long: `signal-engine fans a seed query out to external keyword signal sources
(autocomplete suggestions, related questions, search-result snippets),
tolerates the slow and broken ones, and merges whatever arrived into a
single deduplicated, scored signal set.

Each operation is a subcommand: acquire runs the pipeline, health probes
the sources, and sources lists the configured source set.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./signal-engine.yaml or ~/.config/signal-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("signal-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "signal-engine"))
		}
	}

	viper.SetEnvPrefix("SIGNAL_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger. Debug level with --verbose, otherwise
// warnings and above so table output stays clean.
func newLogger() *zap.Logger {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildConfig assembles the pipeline configuration from defaults, the
// viper config file, and loaded secrets.
func buildConfig() types.PipelineConfig {
	cfg := types.DefaultConfig()

	if v := viper.GetInt("max_parallel_requests"); v > 0 {
		cfg.MaxParallelRequests = v
	}
	if v := viper.GetDuration("request_timeout"); v > 0 {
		cfg.RequestTimeout = v
	}
	if v := viper.GetDuration("total_timeout"); v > 0 {
		cfg.TotalTimeout = v
	}
	if v := viper.GetInt("max_suggestions"); v > 0 {
		cfg.MaxSuggestions = v
	}
	if v := viper.GetInt("target_suggestions"); v > 0 {
		cfg.TargetSuggestions = v
	}
	if v := viper.GetStringSlice("enabled_sources"); len(v) > 0 {
		cfg.EnabledSources = nil
		for _, name := range v {
			cfg.EnabledSources = append(cfg.EnabledSources, types.SourceType(name))
		}
	}
	if v := viper.GetString("user_agent"); v != "" {
		cfg.UserAgent = v
	}

	if viper.GetBool("cache.enabled") {
		cfg.Cache.Enabled = true
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetDuration("cache.ttl"); v > 0 {
		cfg.Cache.TTL = v
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		cfg.Cache.Dir = ".signal-cache"
	}

	cfg.Sources = make(map[types.SourceType]types.SourceConfig)
	for st, keyFile := range secretKeyFiles {
		sc := types.SourceConfig{
			BaseURL: viper.GetString("sources." + string(st) + ".base_url"),
			APIKey:  loadedSecrets[keyFile],
		}
		if v := viper.GetString("sources." + string(st) + ".api_key"); v != "" {
			sc.APIKey = v
		}
		if v := viper.GetDuration("rate_limits." + string(st)); v > 0 {
			cfg.RateLimits[st] = v
		}
		cfg.Sources[st] = sc
	}

	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
