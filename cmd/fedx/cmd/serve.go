package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fortetroy/fedramp-explorer/internal/adapters/fsnotify"
	"github.com/fortetroy/fedramp-explorer/internal/adapters/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the local JSON API",
	Long:          "Starts a loopback HTTP server exposing search, crosswalk, export, and refresh. Watches the mirror for changes and refreshes automatically.",
	Args:          cobra.NoArgs,
	RunE:          runServe,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "port to bind (default: derived from mirror path)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, cfg, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()
	log := newLogger(cfg)

	if err := ensureReady(a); err != nil {
		return err
	}

	port := servePort
	if port == 0 {
		port = cfg.HTTPPort
	}
	if port == 0 {
		cwd, _ := os.Getwd()
		port = web.DefaultPort(cwd)
	}

	server := web.NewServer(a, filepath.Join(".fedx", "http.port"))
	if err := server.Start(port); err != nil {
		return err
	}
	defer server.Stop()
	log.Info().Int("port", server.Port()).Msg("serving API")
	fmt.Printf("listening on %s\n", server.URL())

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("watcher unavailable; refresh via POST /api/refresh")
	} else {
		defer watcher.Stop()
		err = watcher.Watch(cfg.Sources, func() {
			log.Debug().Msg("sources changed; refreshing")
			if err := a.Refresh(); err != nil {
				log.Error().Err(err).Msg("auto refresh failed")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("watch failed; refresh via POST /api/refresh")
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")
	return nil
}
