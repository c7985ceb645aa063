package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:           "stats",
	Short:         "Show corpus and index statistics",
	Args:          cobra.NoArgs,
	RunE:          runStats,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, _, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()
	if err := ensureReady(a); err != nil {
		return err
	}

	stats := a.Stats()
	fmt.Printf("documents:    %d\n", stats.Documents)
	fmt.Printf("controls:     %d\n", stats.Controls)
	fmt.Printf("KSI controls: %d\n", stats.KSIControls)
	fmt.Printf("index tokens: %d\n", stats.Tokens)
	fmt.Printf("fingerprint:  %x\n", stats.Fingerprint)
	return nil
}
