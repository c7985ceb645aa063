package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:           "refresh",
	Short:         "Reload sources and rebuild the index",
	Long:          "Reloads the mirrored source files and publishes a new snapshot. Skipped when the source fingerprint is unchanged. A load failure keeps the previous snapshot.",
	Args:          cobra.NoArgs,
	RunE:          runRefresh,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, _, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()

	// Restore first so the fingerprint check can skip a no-op rebuild.
	a.Restore()

	if err := a.Refresh(); err != nil {
		return err
	}
	stats := a.Stats()
	fmt.Printf("snapshot published: %d documents, %d controls, %d KSIs, %d tokens\n",
		stats.Documents, stats.Controls, stats.KSIControls, stats.Tokens)
	return nil
}
