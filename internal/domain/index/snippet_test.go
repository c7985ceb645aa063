package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

func TestExtractSnippet_ContainsMatch(t *testing.T) {
	seg := ports.Segment{
		Text:  "Organizations must define account management procedures for all systems.",
		Start: 0,
	}
	snip, ok := extractSnippet(seg, "account", 10)
	require.True(t, ok)
	assert.Contains(t, snip.Text, "account")
	assert.Equal(t, "account", snip.Text[snip.MatchStart:snip.MatchEnd])
}

func TestExtractSnippet_NeverCutsMidToken(t *testing.T) {
	seg := ports.Segment{Text: "continuous monitoring and vulnerability assessment program", Start: 0}
	snip, ok := extractSnippet(seg, "vulnerability", 3)
	require.True(t, ok)
	// The 3-char window lands inside "and" and "assessment"; both must be
	// widened to whole words.
	for _, word := range strings.Fields(snip.Text) {
		assert.Contains(t, seg.Text, word)
	}
	assert.True(t, strings.HasSuffix(snip.Text, "assessment") || strings.HasSuffix(snip.Text, "program"))
	assert.False(t, strings.HasPrefix(snip.Text, "nd "))
}

func TestExtractSnippet_OffsetsIncludeSegmentStart(t *testing.T) {
	seg := ports.Segment{Text: "boundary protection devices", Start: 500}
	snip, ok := extractSnippet(seg, "protection", 100)
	require.True(t, ok)
	assert.Equal(t, 500, snip.Start)
	assert.Equal(t, 500+len(seg.Text), snip.End)
}

func TestExtractSnippet_CaseInsensitive(t *testing.T) {
	seg := ports.Segment{Text: "Boundary Protection at external interfaces", Start: 0}
	snip, ok := extractSnippet(seg, "boundary", 20)
	require.True(t, ok)
	assert.Equal(t, "Boundary", snip.Text[snip.MatchStart:snip.MatchEnd])
}

func TestExtractSnippet_NoOccurrence(t *testing.T) {
	seg := ports.Segment{Text: "nothing relevant here", Start: 0}
	_, ok := extractSnippet(seg, "absent", 20)
	assert.False(t, ok)
}
