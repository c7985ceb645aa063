package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fortetroy/fedramp-explorer/internal/app"
	"github.com/fortetroy/fedramp-explorer/internal/domain/crosswalk"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

var (
	crosswalkExport  string
	crosswalkMissing bool
)

var crosswalkCmd = &cobra.Command{
	Use:           "crosswalk <low|moderate|high>",
	Short:         "Crosswalk KSI controls against a NIST baseline",
	Long:          "For each Key Security Indicator, report whether its mapped NIST controls appear in the selected baseline tier, plus overlap summaries.",
	Args:          cobra.ExactArgs(1),
	RunE:          runCrosswalk,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := crosswalkCmd.Flags()
	f.StringVar(&crosswalkExport, "export", "", "write results to stdout as csv or json instead of text")
	f.BoolVar(&crosswalkMissing, "missing", false, "only KSIs with no control in the baseline")
}

func runCrosswalk(cmd *cobra.Command, args []string) error {
	baseline, ok := ports.ParseBaseline(args[0])
	if !ok {
		return fmt.Errorf("baseline must be low, moderate, or high")
	}

	a, _, cleanup, err := buildApp()
	if err != nil {
		return err
	}
	defer cleanup()
	if err := ensureReady(a); err != nil {
		return err
	}

	results, summary, err := a.Crosswalk(baseline)
	if err != nil {
		return err
	}
	if crosswalkMissing {
		filtered := results[:0]
		for _, r := range results {
			if r.Match == crosswalk.MatchMissing {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if crosswalkExport != "" {
		format, ok := app.ParseExportFormat(crosswalkExport)
		if !ok {
			return fmt.Errorf("export format must be csv or json")
		}
		data, err := app.ExportCrosswalk(results, format)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		return nil
	}

	for _, res := range results {
		category := res.Category
		if name, ok := ports.KSICategoryNames[category]; ok {
			category = name
		}
		fmt.Printf("%s  %s  [%s]  %s\n", res.KSIID, res.Name, category, strings.ToUpper(string(res.Match)))
		for _, mc := range res.Matched {
			mark := " "
			if mc.InBaseline {
				mark = "✓"
			}
			fmt.Printf("    %s %s  %s\n", mark, mc.ID, mc.Name)
		}
		for _, u := range res.Unresolved {
			fmt.Printf("    warning: unresolved reference %s\n", u)
		}
	}

	fmt.Printf("\n%s baseline: %d KSIs — %d exact, %d mapped, %d missing\n",
		summary.Baseline, summary.TotalKSIs, summary.Exact, summary.Mapped, summary.Missing)
	fmt.Printf("controls in both: %d   KSI only: %d   baseline only: %d\n",
		len(summary.InBoth), len(summary.KSIOnly), len(summary.BaselineOnly))
	return nil
}
