package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

func TestSearch_EmptyQuery(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("   ", ports.SearchOptions{})
	assert.Empty(t, result.Hits)
	assert.Zero(t, result.Total)
}

func TestSearch_DirectControlID(t *testing.T) {
	e := NewEngine(testCorpus())
	for _, q := range []string{"AC-2", "ac 2", "AC2", "ac-02"} {
		result := e.Search(q, ports.SearchOptions{Mode: ports.ModeControl})
		require.NotEmpty(t, result.Hits, "query %q", q)
		assert.Equal(t, "AC-2", result.Hits[0].ID, "query %q", q)
	}
}

func TestSearch_GlobalIDQueryPinsControlFirst(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("AC-2", ports.SearchOptions{})
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "AC-2", result.Hits[0].ID)

	// The RFC that cites AC-2 still appears, below the control itself.
	ids := hitIDs(result)
	assert.Contains(t, ids, "rfc-0007")
}

func TestSearch_FuzzyFallback(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("acount managment", ports.SearchOptions{})
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "AC-2", result.Hits[0].ID)
	assert.NotEmpty(t, result.Corrections)
}

func TestSearch_FuzzyNotUsedWhenExactHits(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("account management", ports.SearchOptions{})
	require.NotEmpty(t, result.Hits)
	assert.Empty(t, result.Corrections)
}

func TestSearch_RankScoreBeforeKind(t *testing.T) {
	c := ports.NewCorpus()
	c.Documents["roadmap-a"] = &ports.Document{
		ID: "roadmap-a", Title: "Automation", Kind: ports.DocRoadmap,
		Segments: []ports.Segment{{Text: "automation automation automation automation automation", Start: 0, End: 55}},
	}
	c.Documents["rfc-b"] = &ports.Document{
		ID: "rfc-b", Title: "Misc", Kind: ports.DocRFC,
		Segments: []ports.Segment{{Text: "one mention of automation", Start: 0, End: 25}},
	}
	e := NewEngine(c)
	result := e.Search("automation", ports.SearchOptions{})
	require.Len(t, result.Hits, 2)
	// Five body occurrences beat one regardless of kind or ID order.
	assert.Equal(t, "roadmap-a", result.Hits[0].ID)
	assert.Greater(t, result.Hits[0].Score, result.Hits[1].Score)
}

func TestSearch_KindBreaksScoreTies(t *testing.T) {
	c := ports.NewCorpus()
	c.Documents["a-roadmap"] = &ports.Document{
		ID: "a-roadmap", Title: "x", Kind: ports.DocRoadmap,
		Segments: []ports.Segment{{Text: "encryption", Start: 0, End: 10}},
	}
	c.Documents["z-standard"] = &ports.Document{
		ID: "z-standard", Title: "y", Kind: ports.DocStandard,
		Segments: []ports.Segment{{Text: "encryption", Start: 0, End: 10}},
	}
	e := NewEngine(c)
	result := e.Search("encryption", ports.SearchOptions{})
	require.Len(t, result.Hits, 2)
	// Equal scores: STANDARD ranks before ROADMAP even though its ID sorts later.
	assert.Equal(t, "z-standard", result.Hits[0].ID)
}

func TestSearch_BaselineFilter(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("boundary protection", ports.SearchOptions{Baseline: ports.BaselineLow})
	assert.Empty(t, result.Hits, "SC-7 is HIGH-only")

	result = e.Search("boundary protection", ports.SearchOptions{Baseline: ports.BaselineHigh})
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "SC-7", result.Hits[0].ID)
}

func TestSearch_FamilyFilter(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("account management", ports.SearchOptions{Families: []string{"SC"}})
	for _, hit := range result.Hits {
		assert.NotEqual(t, "AC-2", hit.ID)
	}

	// Family filter keeps documents whose references hit the family.
	result = e.Search("account management", ports.SearchOptions{Families: []string{"ac"}})
	ids := hitIDs(result)
	assert.Contains(t, ids, "AC-2")
	assert.Contains(t, ids, "rfc-0007")
}

func TestSearch_KSIOnlyFilter(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("phishing resistant mfa", ports.SearchOptions{KSIOnly: true})
	require.NotEmpty(t, result.Hits)
	for _, hit := range result.Hits {
		assert.True(t, hit.IsKSI)
	}
}

func TestSearch_Snippets(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("reported", ports.SearchOptions{SnippetWindow: 15})
	require.NotEmpty(t, result.Hits)
	require.NotEmpty(t, result.Hits[0].Snippets)
	assert.Contains(t, result.Hits[0].Snippets[0].Text, "reported")
}

func TestSearch_MaxResults(t *testing.T) {
	e := NewEngine(testCorpus())
	result := e.Search("account management", ports.SearchOptions{MaxResults: 1})
	assert.Len(t, result.Hits, 1)
	assert.GreaterOrEqual(t, result.Total, 2)
}

func TestSearch_DeterministicAcrossBuilds(t *testing.T) {
	a := NewEngine(testCorpus())
	b := NewEngine(testCorpus())
	for _, q := range []string{"account management", "AC-2", "boundary", "acount"} {
		ra := a.Search(q, ports.SearchOptions{})
		rb := b.Search(q, ports.SearchOptions{})
		assert.Equal(t, hitIDsOf(ra), hitIDsOf(rb), "query %q", q)
	}
}

func hitIDs(r *SearchResult) []string { return hitIDsOf(r) }

func hitIDsOf(r *SearchResult) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}
