// Package crosswalk computes coverage between the KSI control set and the
// NIST baseline catalogs: for each Key Security Indicator, which of its
// mapped NIST controls appear in a chosen baseline tier.
package crosswalk

import (
	"sort"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// MatchType classifies how a KSI relates to the selected baseline.
type MatchType string

const (
	// MatchExact means the KSI's own ID is itself a baseline control ID.
	// Takes precedence in the classification, but the full mapped set is
	// still reported alongside it.
	MatchExact MatchType = "exact"
	// MatchMapped means at least one mapped control is in the baseline.
	MatchMapped MatchType = "mapped"
	// MatchMissing means none of the KSI's mapped controls are in the baseline.
	MatchMissing MatchType = "missing"
)

// MatchedControl is one mapped NIST control with the tiers it belongs to.
type MatchedControl struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	Family     string           `json:"family,omitempty"`
	Baselines  []ports.Baseline `json:"baselines,omitempty"`
	InBaseline bool             `json:"in_baseline"`
}

// Result is the crosswalk row for one KSI. Matched always carries the full
// mapped set, in-baseline or not, so exports show the complete picture even
// when the classification came from a single control.
type Result struct {
	KSIID      string           `json:"ksi_id"`
	Name       string           `json:"name"`
	Category   string           `json:"category"`
	Match      MatchType        `json:"match"`
	Matched    []MatchedControl `json:"matched"`
	Unresolved []string         `json:"unresolved,omitempty"`
}

// FamilyCoverage is the per-family rollup in a Summary.
type FamilyCoverage struct {
	Family     string `json:"family"`
	Mapped     int    `json:"mapped"`
	InBaseline int    `json:"in_baseline"`
}

// Summary aggregates one crosswalk run: overlap counts between the KSI-mapped
// control set and the baseline catalog, plus per-family coverage.
type Summary struct {
	Baseline     ports.Baseline   `json:"baseline"`
	TotalKSIs    int              `json:"total_ksis"`
	Exact        int              `json:"exact"`
	Mapped       int              `json:"mapped"`
	Missing      int              `json:"missing"`
	InBoth       []string         `json:"in_both"`
	KSIOnly      []string         `json:"ksi_only"`
	BaselineOnly []string         `json:"baseline_only"`
	Families     []FamilyCoverage `json:"families"`
}

// Resolve computes the crosswalk for one baseline tier. Results are ordered
// by KSI ID; within a result the mapped controls are ordered by canonical ID.
// Deterministic for a given corpus.
func Resolve(corpus *ports.Corpus, baseline ports.Baseline) ([]Result, *Summary) {
	sum := &Summary{Baseline: baseline}
	ksiMapped := make(map[string]bool) // control IDs referenced by any KSI

	ids := make([]string, 0, len(corpus.KSIControls))
	for id := range corpus.KSIControls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		ksi := corpus.KSIControls[id]
		res := Result{
			KSIID:      ksi.ID,
			Name:       ksi.Name,
			Category:   ksi.Category,
			Unresolved: ksi.Unresolved,
		}

		anyIn := false
		for _, cid := range ksi.MappedControlIDs {
			ksiMapped[cid] = true
			mc := MatchedControl{ID: cid}
			if ctl, ok := corpus.Controls[cid]; ok {
				mc.Name = ctl.Name
				mc.Family = ctl.Family
				mc.Baselines = sortedBaselines(ctl.Baselines)
				mc.InBaseline = ctl.InBaseline(baseline)
			}
			if mc.InBaseline {
				anyIn = true
			}
			res.Matched = append(res.Matched, mc)
		}
		sort.Slice(res.Matched, func(i, j int) bool { return res.Matched[i].ID < res.Matched[j].ID })

		// A KSI whose own ID is itself a baseline control is an exact match;
		// this wins the classification but the mapped set above still carries
		// every relation for export.
		selfIn := false
		if ctl, ok := corpus.Controls[ksi.ID]; ok && ctl.InBaseline(baseline) {
			selfIn = true
		}
		switch {
		case selfIn:
			res.Match = MatchExact
			sum.Exact++
		case anyIn:
			res.Match = MatchMapped
			sum.Mapped++
		default:
			res.Match = MatchMissing
			sum.Missing++
		}
		results = append(results, res)
	}
	sum.TotalKSIs = len(results)

	fillSets(corpus, baseline, ksiMapped, sum)
	fillFamilies(corpus, baseline, ksiMapped, sum)
	return results, sum
}

// fillSets computes the three overlap sets: controls both KSI-mapped and in
// the baseline, KSI-mapped but absent from the baseline, and baseline
// controls no KSI maps to.
func fillSets(corpus *ports.Corpus, baseline ports.Baseline, ksiMapped map[string]bool, sum *Summary) {
	for cid := range ksiMapped {
		if ctl, ok := corpus.Controls[cid]; ok && ctl.InBaseline(baseline) {
			sum.InBoth = append(sum.InBoth, cid)
		} else {
			sum.KSIOnly = append(sum.KSIOnly, cid)
		}
	}
	for cid, ctl := range corpus.Controls {
		if ctl.InBaseline(baseline) && !ksiMapped[cid] {
			sum.BaselineOnly = append(sum.BaselineOnly, cid)
		}
	}
	sort.Strings(sum.InBoth)
	sort.Strings(sum.KSIOnly)
	sort.Strings(sum.BaselineOnly)
}

func fillFamilies(corpus *ports.Corpus, baseline ports.Baseline, ksiMapped map[string]bool, sum *Summary) {
	cov := make(map[string]*FamilyCoverage)
	for cid := range ksiMapped {
		ctl, ok := corpus.Controls[cid]
		if !ok {
			continue
		}
		fc, ok := cov[ctl.Family]
		if !ok {
			fc = &FamilyCoverage{Family: ctl.Family}
			cov[ctl.Family] = fc
		}
		fc.Mapped++
		if ctl.InBaseline(baseline) {
			fc.InBaseline++
		}
	}
	fams := make([]string, 0, len(cov))
	for f := range cov {
		fams = append(fams, f)
	}
	sort.Strings(fams)
	for _, f := range fams {
		sum.Families = append(sum.Families, *cov[f])
	}
}

func sortedBaselines(set map[ports.Baseline]bool) []ports.Baseline {
	var out []ports.Baseline
	for _, b := range ports.Baselines {
		if set[b] {
			out = append(out, b)
		}
	}
	return out
}
