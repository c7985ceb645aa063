package markdown

import (
	"os"
	"regexp"
	"strings"

	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// ksiHeadRe finds KSI identifiers where they introduce an entry, capturing
// the rest of the line as the entry's name ("KSI-IAM-01: Use phishing-
// resistant MFA...").
var ksiHeadRe = regexp.MustCompile(`(?m)^.*?\b(KSI-[A-Z]{2,4}-[0-9]{1,2})\b[:\s*-]*(.*)$`)

// LoadKSI parses the Key Security Indicators catalog. Each KSI entry becomes
// a KSIControl carrying the NIST control IDs its section cites; sections run
// from one KSI identifier to the next. Control references resolve against the
// baseline table later, in Corpus.ResolveReferences.
func LoadKSI(path string, corpus *ports.Corpus) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return &ports.SourceMissingError{Source: path, Err: err}
	}
	content := string(raw)

	heads := ksiHeadRe.FindAllStringSubmatchIndex(content, -1)
	if len(heads) == 0 {
		return &ports.SourceFormatError{Source: path, Detail: "no KSI identifiers found"}
	}

	for i, m := range heads {
		rawID := content[m[2]:m[3]]
		id, ok := index.CanonicalKSIID(rawID)
		if !ok {
			continue
		}

		sectionEnd := len(content)
		if i+1 < len(heads) {
			sectionEnd = heads[i+1][0]
		}
		section := content[m[0]:sectionEnd]

		ksi, exists := corpus.KSIControls[id]
		if !exists {
			ksi = &ports.KSIControl{
				ID:       id,
				Category: ksiCategory(id),
			}
			corpus.KSIControls[id] = ksi
		}
		if ksi.Name == "" {
			ksi.Name = cleanName(content[m[4]:m[5]])
		}
		if ksi.Description == "" {
			ksi.Description = sectionDescription(section)
		}
		ksi.MappedControlIDs = mergeRefs(ksi.MappedControlIDs, index.ExtractControlRefs(section))
	}

	if len(corpus.KSIControls) == 0 {
		return &ports.SourceFormatError{Source: path, Detail: "no parseable KSI entries"}
	}
	return nil
}

// ksiCategory extracts the category code from a canonical KSI ID
// ("KSI-IAM-01" -> "IAM").
func ksiCategory(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) == 3 {
		return parts[1]
	}
	return ""
}

// cleanName strips the markdown decoration that follows a KSI identifier on
// its heading line.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`|")
	return strings.TrimSpace(s)
}

// sectionDescription returns the section's prose with heading decoration and
// table plumbing stripped, capped at the first blank-line break after the
// heading so the description stays a summary rather than the whole section.
func sectionDescription(section string) string {
	lines := strings.Split(section, "\n")
	var out []string
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "|") {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, " ")
}

func mergeRefs(existing, refs []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[id] = true
	}
	for _, id := range refs {
		if !seen[id] {
			seen[id] = true
			existing = append(existing, id)
		}
	}
	return existing
}
