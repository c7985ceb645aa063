package index

import (
	"strings"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Snippet is a highlighted extract from a matched segment. Start/End are
// offsets of the extract within the original file (segment offsets applied);
// MatchStart/MatchEnd delimit the matched token within Text.
type Snippet struct {
	Text       string `json:"text"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	MatchStart int    `json:"match_start"`
	MatchEnd   int    `json:"match_end"`
}

// extractSnippet finds the first case-insensitive occurrence of token in the
// segment and returns it with up to window characters of context on each
// side. The window is widened outward to the nearest token boundary so the
// extract never cuts a word in half. Returns ok=false when the token does
// not occur in the segment (a title-only match, for example).
func extractSnippet(seg ports.Segment, token string, window int) (Snippet, bool) {
	if token == "" || seg.Text == "" {
		return Snippet{}, false
	}
	lower := strings.ToLower(seg.Text)
	at := strings.Index(lower, strings.ToLower(token))
	if at < 0 {
		return Snippet{}, false
	}
	matchEnd := at + len(token)

	start := at - window
	if start < 0 {
		start = 0
	}
	end := matchEnd + window
	if end > len(seg.Text) {
		end = len(seg.Text)
	}

	// Snap outward to whitespace so the window never truncates mid-token.
	for start > 0 && !isBoundary(seg.Text[start-1]) {
		start--
	}
	for end < len(seg.Text) && !isBoundary(seg.Text[end]) {
		end++
	}

	return Snippet{
		Text:       seg.Text[start:end],
		Start:      seg.Start + start,
		End:        seg.Start + end,
		MatchStart: at - start,
		MatchEnd:   matchEnd - start,
	}, true
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
