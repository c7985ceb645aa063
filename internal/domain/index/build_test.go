package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

func testCorpus() *ports.Corpus {
	c := ports.NewCorpus()
	c.Controls["AC-2"] = &ports.Control{
		ID:          "AC-2",
		Name:        "Account Management",
		Description: "Define and document the types of accounts allowed and prohibited.",
		Family:      "AC",
		Baselines: map[ports.Baseline]bool{
			ports.BaselineLow:      true,
			ports.BaselineModerate: true,
			ports.BaselineHigh:     true,
		},
	}
	c.Controls["SC-7"] = &ports.Control{
		ID:          "SC-7",
		Name:        "Boundary Protection",
		Description: "Monitor and control communications at external boundaries.",
		Family:      "SC",
		Baselines:   map[ports.Baseline]bool{ports.BaselineHigh: true},
	}
	c.KSIControls["KSI-IAM-01"] = &ports.KSIControl{
		ID:               "KSI-IAM-01",
		Name:             "Phishing-Resistant MFA",
		Description:      "Use phishing-resistant multi-factor authentication.",
		Category:         "IAM",
		MappedControlIDs: []string{"AC-2"},
	}
	c.Documents["rfc-0007"] = &ports.Document{
		ID:    "rfc-0007",
		Title: "Significant Change Notifications",
		Kind:  ports.DocRFC,
		Segments: []ports.Segment{
			{Text: "This RFC revises how account management changes under AC-2 are reported.", Start: 0, End: 73},
		},
		ControlRefs: []string{"AC-2"},
	}
	return c
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(testCorpus())
	b := Build(testCorpus())

	assert.Equal(t, a.EntryIDs, b.EntryIDs)
	assert.Equal(t, a.Vocab, b.Vocab)
	for _, tok := range a.Vocab {
		assert.Equal(t, a.Lookup(tok), b.Lookup(tok), "token %q", tok)
	}
}

func TestBuild_TitleOutweighsBody(t *testing.T) {
	idx := Build(testCorpus())

	// "management" is in AC-2's title and in rfc-0007's body; the title
	// posting must sort first.
	postings := idx.Lookup("management")
	require.NotEmpty(t, postings)
	assert.Equal(t, "AC-2", postings[0].EntryID)
	assert.Equal(t, titleSegment, postings[0].Segment)
	assert.Greater(t, postings[0].Weight, bodyWeight)
}

func TestBuild_ControlIDToken(t *testing.T) {
	idx := Build(testCorpus())

	postings := idx.Lookup("ac-2")
	require.NotEmpty(t, postings)
	// The control's own entry carries the ID bonus and sorts above the RFC
	// that merely cites it.
	assert.Equal(t, "AC-2", postings[0].EntryID)
	assert.Equal(t, controlIDBonus, postings[0].Weight)

	ids := make([]string, len(postings))
	for i, p := range postings {
		ids[i] = p.EntryID
	}
	assert.Contains(t, ids, "rfc-0007")
}

func TestBuild_KSIEntry(t *testing.T) {
	idx := Build(testCorpus())

	entry := idx.Entries["KSI-IAM-01"]
	require.NotNil(t, entry)
	assert.True(t, entry.IsKSI)
	assert.Equal(t, "IAM", entry.Family)

	postings := idx.Lookup("ksi-iam-01")
	require.NotEmpty(t, postings)
	assert.Equal(t, "KSI-IAM-01", postings[0].EntryID)
}

func TestBuild_RefFamilies(t *testing.T) {
	idx := Build(testCorpus())

	entry := idx.Entries["rfc-0007"]
	require.NotNil(t, entry)
	assert.True(t, entry.RefFamilies["AC"])
	assert.False(t, entry.RefFamilies["SC"])
}

func TestBuild_PostingOrder(t *testing.T) {
	idx := Build(testCorpus())

	for tok, postings := range idx.Postings {
		for i := 1; i < len(postings); i++ {
			prev, cur := postings[i-1], postings[i]
			if prev.Weight == cur.Weight {
				if prev.EntryID == cur.EntryID {
					assert.Less(t, prev.Segment, cur.Segment, "token %q", tok)
				} else {
					assert.Less(t, prev.EntryID, cur.EntryID, "token %q", tok)
				}
			} else {
				assert.Greater(t, prev.Weight, cur.Weight, "token %q", tok)
			}
		}
	}
}
