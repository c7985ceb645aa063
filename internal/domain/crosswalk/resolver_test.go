package crosswalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

func crosswalkCorpus() *ports.Corpus {
	c := ports.NewCorpus()
	c.Controls["AC-2"] = &ports.Control{
		ID: "AC-2", Name: "Account Management", Family: "AC",
		Baselines: map[ports.Baseline]bool{
			ports.BaselineLow:      true,
			ports.BaselineModerate: true,
			ports.BaselineHigh:     true,
		},
	}
	c.Controls["SC-7"] = &ports.Control{
		ID: "SC-7", Name: "Boundary Protection", Family: "SC",
		Baselines: map[ports.Baseline]bool{ports.BaselineHigh: true},
	}
	c.KSIControls["KSI-IAM-01"] = &ports.KSIControl{
		ID: "KSI-IAM-01", Name: "Phishing-Resistant MFA", Category: "IAM",
		MappedControlIDs: []string{"AC-2"},
	}
	c.KSIControls["KSI-CNA-01"] = &ports.KSIControl{
		ID: "KSI-CNA-01", Name: "Network Segmentation", Category: "CNA",
		MappedControlIDs: []string{"SC-7"},
	}
	c.KSIControls["KSI-RPL-01"] = &ports.KSIControl{
		ID: "KSI-RPL-01", Name: "Recovery Objectives", Category: "RPL",
		MappedControlIDs: nil,
		Unresolved:       []string{"CP-2"},
	}
	return c
}

func TestResolve_MappedInLow(t *testing.T) {
	results, _ := Resolve(crosswalkCorpus(), ports.BaselineLow)
	require.Len(t, results, 3)

	// Ordered by KSI ID.
	assert.Equal(t, "KSI-CNA-01", results[0].KSIID)
	assert.Equal(t, "KSI-IAM-01", results[1].KSIID)
	assert.Equal(t, "KSI-RPL-01", results[2].KSIID)

	iam := results[1]
	assert.Equal(t, MatchMapped, iam.Match)
	require.Len(t, iam.Matched, 1)
	assert.Equal(t, "AC-2", iam.Matched[0].ID)
	assert.True(t, iam.Matched[0].InBaseline)
}

func TestResolve_MissingWhenNoOverlap(t *testing.T) {
	results, _ := Resolve(crosswalkCorpus(), ports.BaselineLow)

	// SC-7 is HIGH-only, so KSI-CNA-01 has no control in LOW.
	cna := results[0]
	assert.Equal(t, MatchMissing, cna.Match)
	require.Len(t, cna.Matched, 1)
	assert.False(t, cna.Matched[0].InBaseline)
	// Family carried for downstream filtering even on a miss.
	assert.Equal(t, "CNA", cna.Category)

	// No mapped controls at all is also MISSING, with the unresolved
	// reference surfaced.
	rpl := results[2]
	assert.Equal(t, MatchMissing, rpl.Match)
	assert.Equal(t, []string{"CP-2"}, rpl.Unresolved)
}

func TestResolve_MappedInHigh(t *testing.T) {
	results, sum := Resolve(crosswalkCorpus(), ports.BaselineHigh)
	assert.Equal(t, MatchMapped, results[0].Match) // KSI-CNA-01 via SC-7
	assert.Equal(t, 2, sum.Mapped)
	assert.Equal(t, 1, sum.Missing)
}

func TestResolve_Summary(t *testing.T) {
	_, sum := Resolve(crosswalkCorpus(), ports.BaselineLow)
	assert.Equal(t, ports.BaselineLow, sum.Baseline)
	assert.Equal(t, 3, sum.TotalKSIs)
	assert.Equal(t, []string{"AC-2"}, sum.InBoth)
	assert.Equal(t, []string{"SC-7"}, sum.KSIOnly)
	assert.Empty(t, sum.BaselineOnly)
}

func TestResolve_BaselineOnly(t *testing.T) {
	c := crosswalkCorpus()
	c.Controls["AU-2"] = &ports.Control{
		ID: "AU-2", Name: "Event Logging", Family: "AU",
		Baselines: map[ports.Baseline]bool{ports.BaselineLow: true},
	}
	_, sum := Resolve(c, ports.BaselineLow)
	assert.Equal(t, []string{"AU-2"}, sum.BaselineOnly)
}

func TestResolve_FamilyCoverage(t *testing.T) {
	_, sum := Resolve(crosswalkCorpus(), ports.BaselineLow)
	require.Len(t, sum.Families, 2)
	assert.Equal(t, FamilyCoverage{Family: "AC", Mapped: 1, InBaseline: 1}, sum.Families[0])
	assert.Equal(t, FamilyCoverage{Family: "SC", Mapped: 1, InBaseline: 0}, sum.Families[1])
}

func TestResolve_Deterministic(t *testing.T) {
	a, asum := Resolve(crosswalkCorpus(), ports.BaselineModerate)
	b, bsum := Resolve(crosswalkCorpus(), ports.BaselineModerate)
	assert.Equal(t, a, b)
	assert.Equal(t, asum, bsum)
}

func TestResolve_DoesNotMutateCorpus(t *testing.T) {
	c := crosswalkCorpus()
	Resolve(c, ports.BaselineLow)
	assert.Equal(t, []string{"AC-2"}, c.KSIControls["KSI-IAM-01"].MappedControlIDs)
	assert.True(t, c.Controls["AC-2"].Baselines[ports.BaselineLow])
}
