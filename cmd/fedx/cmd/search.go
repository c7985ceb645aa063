package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fortetroy/fedramp-explorer/internal/app"
	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

var (
	searchControlMode bool
	searchFamilies    []string
	searchBaseline    string
	searchKSIOnly     bool
	searchLimit       int
	searchWindow      int
	searchExport      string
)

var searchCmd = &cobra.Command{
	Use:           "search <query>",
	Short:         "Search documents, controls, and KSIs",
	Long:          "Full-text and control-ID search with fuzzy fallback. Control IDs in any spelling (AC-2, ac 2, AC2, at-2.2) resolve to their canonical entry.",
	Args:          cobra.MinimumNArgs(1),
	RunE:          runSearch,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := searchCmd.Flags()
	f.BoolVarP(&searchControlMode, "control", "c", false, "control-ID mode (exact ID match first)")
	f.StringSliceVarP(&searchFamilies, "family", "f", nil, "filter by control family (repeatable)")
	f.StringVarP(&searchBaseline, "baseline", "b", "", "filter to controls in a baseline (low|moderate|high)")
	f.BoolVar(&searchKSIOnly, "ksi-only", false, "only KSI entries")
	f.IntVarP(&searchLimit, "limit", "n", 0, "max results")
	f.IntVar(&searchWindow, "window", 0, "snippet context characters per side")
	f.StringVar(&searchExport, "export", "", "write results to stdout as csv or json instead of text")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, cfg, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()
	if err := ensureReady(a); err != nil {
		return err
	}

	opts := ports.SearchOptions{
		Families:      searchFamilies,
		KSIOnly:       searchKSIOnly,
		MaxResults:    searchLimit,
		SnippetWindow: searchWindow,
		FuzzyDistance: cfg.FuzzyDistance,
	}
	if opts.MaxResults == 0 {
		opts.MaxResults = cfg.MaxResults
	}
	if opts.SnippetWindow == 0 {
		opts.SnippetWindow = cfg.SnippetWindow
	}
	if searchControlMode {
		opts.Mode = ports.ModeControl
	}
	if searchBaseline != "" {
		b, ok := ports.ParseBaseline(searchBaseline)
		if !ok {
			return fmt.Errorf("baseline must be low, moderate, or high")
		}
		opts.Baseline = b
	}

	result, err := a.Search(query, opts)
	if err != nil {
		return err
	}

	if searchExport != "" {
		format, ok := app.ParseExportFormat(searchExport)
		if !ok {
			return fmt.Errorf("export format must be csv or json")
		}
		data, err := app.ExportSearch(result.Hits, format)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}

	printResult(result)
	return nil
}

func printResult(result *index.SearchResult) {
	if len(result.Corrections) > 0 {
		fmt.Printf("did you mean: %s\n\n", strings.Join(result.Corrections, " "))
	}
	if len(result.Hits) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, hit := range result.Hits {
		fmt.Printf("%s  %s  [%s]  score=%.1f\n", hit.ID, hit.Title, hit.Kind, hit.Score)
		if len(hit.Baselines) > 0 {
			parts := make([]string, len(hit.Baselines))
			for i, b := range hit.Baselines {
				parts[i] = string(b)
			}
			fmt.Printf("    baselines: %s\n", strings.Join(parts, ", "))
		}
		for _, snip := range hit.Snippets {
			fmt.Printf("    … %s …\n", strings.ReplaceAll(snip.Text, "\n", " "))
		}
		for _, u := range hit.Unresolved {
			fmt.Printf("    warning: unresolved reference %s\n", u)
		}
	}
	if result.Total > len(result.Hits) {
		fmt.Printf("\n%d of %d results shown\n", len(result.Hits), result.Total)
	}
}
