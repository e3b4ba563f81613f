package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"buildcost/internal/backend"
	"buildcost/internal/cli"
	"buildcost/internal/config"
	applog "buildcost/internal/log"
)

var (
	flagConfigFile string
	flagBackend    string
	flagVerbose    bool
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "buildcostctl",
	Short:        "Construction budget and payment rollup operator CLI",
	Long:         "Manage the buildcost record store: run migrations, seed demo data, import budgets and print reports.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cli.LoadEnvFile()
		if flagConfigFile != "" {
			if err := os.Setenv(config.ConfigFileEnv, flagConfigFile); err != nil {
				return err
			}
		}
		cfg = config.Load()
		if flagBackend != "" {
			cfg.DataBackend = flagBackend
		}
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		applog.SetDefault(applog.New(applog.Config{Level: level, Component: "ctl", Output: os.Stderr}))
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Override DATA_BACKEND (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

// openBackend opens the configured store. Commands that write warn when
// the store is in memory, since nothing outlives the process.
func openBackend(ctx context.Context, writes bool) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if writes && bcfg.Type == backend.MemoryBackend {
		fmt.Fprintln(os.Stderr, "  warning: memory backend selected, changes are discarded on exit")
	}
	return backend.NewFactory(slog.Default()).CreateBackend(ctx, bcfg)
}

func closeBackend(be *backend.BackendResult) {
	if be.Cleanup != nil {
		if err := be.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}
}
