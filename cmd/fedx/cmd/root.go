package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fortetroy/fedramp-explorer/internal/adapters/bbolt"
	"github.com/fortetroy/fedramp-explorer/internal/app"
	"github.com/fortetroy/fedramp-explorer/internal/logger"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fedx",
	Short: "fedx — FedRAMP documentation explorer",
	Long:  "Search mirrored FedRAMP baselines, standards, RFCs, and roadmap documents; crosswalk KSI controls against NIST baselines.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: fedramp-explorer.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(crosswalkCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the CLI logger honoring config level and --verbose.
func newLogger(cfg app.Config) zerolog.Logger {
	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Pretty: true})
}

// buildApp loads config and wires the application. The returned cleanup
// closes the snapshot store; callers defer it.
func buildApp() (*app.App, app.Config, func(), error) {
	cfg, err := app.LoadConfig(flagConfig)
	if err != nil {
		return nil, cfg, nil, err
	}
	log := newLogger(cfg)

	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		// The store is an optimization (warm restarts); queries work without it.
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("snapshot store unavailable")
		store = nil
	}

	var a *app.App
	if store != nil {
		a = app.New(app.NewCorpusLoader(), store, cfg.MirrorID, cfg.Sources, log)
	} else {
		a = app.New(app.NewCorpusLoader(), nil, cfg.MirrorID, cfg.Sources, log)
	}

	cleanup := func() {
		if store != nil {
			store.Close()
		}
	}
	return a, cfg, cleanup, nil
}

// ensureReady restores a persisted snapshot or loads from sources so query
// commands have something to answer against.
func ensureReady(a *app.App) error {
	if restored, err := a.Restore(); err == nil && restored {
		return nil
	}
	if err := a.Refresh(); err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	return nil
}
