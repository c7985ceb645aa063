package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fortetroy/fedramp-explorer/internal/app"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:           "config",
	Short:         "Show configuration",
	Long:          "Shows the effective configuration: mirror ID, source paths, snapshot store, and API port. --init writes the defaults to fedramp-explorer.yaml.",
	Args:          cobra.NoArgs,
	RunE:          runConfig,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write default config to "+app.DefaultConfigName)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configInit {
		cfg := app.DefaultConfig()
		if _, err := os.Stat(app.DefaultConfigName); err == nil {
			return fmt.Errorf("%s already exists", app.DefaultConfigName)
		}
		if err := cfg.Save(app.DefaultConfigName); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", app.DefaultConfigName)
		return nil
	}

	cfg, err := app.LoadConfig(flagConfig)
	if err != nil {
		return err
	}

	fmt.Println("fedx config")
	fmt.Printf("  Mirror:     %s\n", cfg.MirrorID)
	fmt.Printf("  Baseline:   %s\n", cfg.Sources.BaselinePath)
	fmt.Printf("  KSI:        %s\n", cfg.Sources.KSIPath)
	fmt.Printf("  Standards:  %s\n", cfg.Sources.StandardsDir)
	fmt.Printf("  RFCs:       %s\n", cfg.Sources.RFCDir)
	fmt.Printf("  Roadmap:    %s\n", cfg.Sources.RoadmapDir)
	fmt.Printf("  DB:         %s\n", cfg.DBPath)
	fmt.Printf("  Log level:  %s\n", cfg.LogLevel)

	portFile := filepath.Join(".fedx", "http.port")
	if portData, err := os.ReadFile(portFile); err == nil {
		fmt.Printf("  API:        http://localhost:%s\n", strings.TrimSpace(string(portData)))
	}
	return nil
}
