package index

import (
	"regexp"
	"strconv"
	"strings"
)

// tokenRe matches runs of letters and digits. Hyphens and parentheses are
// separators for prose tokens; control IDs take the dedicated path below so
// "AC-2(1)" in a query still resolves despite the split.
var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize splits free text into normalized tokens:
//  1. Lowercase
//  2. Split on anything that is not a letter or digit
//  3. Discard tokens < 2 chars
//
// Prose tokens are deliberately not stemmed or otherwise collapsed — control
// search and free-text search have different tolerance rules, and
// over-normalizing prose loses distinguishing words.
func Tokenize(input string) []string {
	if input == "" {
		return nil
	}
	parts := tokenRe.FindAllString(strings.ToLower(input), -1)
	var tokens []string
	for _, p := range parts {
		if len(p) >= 2 {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// controlIDRe recognizes the spellings a control ID shows up in across the
// document set and in queries: "AC-2", "ac 2", "AC2", "AC-02", "AC 2(1)",
// "at-2.2" (dotted enhancement form used in the KSI document).
var controlIDRe = regexp.MustCompile(`^([A-Za-z]{2})[\s-]*0*([0-9]{1,2})(?:\s*(?:\(\s*0*([0-9]{1,2})\s*\)|\.0*([0-9]{1,2})))?$`)

// CanonicalControlID maps a raw control-ID spelling to its canonical form,
// e.g. "ac 2.1" -> "AC-2(1)". Returns ok=false when the input cannot
// plausibly be a control ID; that is not an error, it just means the query
// takes the free-text path. Idempotent on already-canonical IDs.
func CanonicalControlID(raw string) (string, bool) {
	m := controlIDRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	family := strings.ToUpper(m[1])
	num, err := strconv.Atoi(m[2])
	if err != nil || num == 0 {
		return "", false
	}
	id := family + "-" + strconv.Itoa(num)
	enh := m[3]
	if enh == "" {
		enh = m[4]
	}
	if enh != "" {
		n, err := strconv.Atoi(enh)
		if err != nil || n == 0 {
			return "", false
		}
		id += "(" + strconv.Itoa(n) + ")"
	}
	return id, true
}

// ksiIDRe matches Key Security Indicator identifiers like "KSI-IAM-01".
var ksiIDRe = regexp.MustCompile(`^(?i)KSI-([A-Z]{2,4})-0*([0-9]{1,2})$`)

// CanonicalKSIID normalizes a KSI identifier to the uppercase zero-padded
// form the KSI document uses ("ksi-iam-1" -> "KSI-IAM-01").
func CanonicalKSIID(raw string) (string, bool) {
	m := ksiIDRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil || num == 0 {
		return "", false
	}
	return "KSI-" + strings.ToUpper(m[1]) + "-" + pad2(num), true
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// refRe finds control-ID spellings inside prose ("AC-2", "ac-2.1", "AC-2(1)").
var refRe = regexp.MustCompile(`(?i)\b[a-z]{2}-[0-9]{1,2}(?:\.[0-9]{1,2}|\([0-9]{1,2}\))?\b`)

// ExtractControlRefs returns the canonical control IDs cited in text,
// deduplicated, in order of first appearance.
func ExtractControlRefs(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range refRe.FindAllString(text, -1) {
		if id, ok := CanonicalControlID(raw); ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ControlFamily derives the family code from a canonical control ID
// ("AC-2(1)" -> "AC"). Returns "" for IDs with no family prefix.
func ControlFamily(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return ""
}
