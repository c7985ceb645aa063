// Package ports defines the shared types and interfaces (contracts) that
// adapters and domain logic depend on. Domain code depends only on this
// package, never on concrete adapter implementations.
package ports

// DocKind classifies a loaded document.
type DocKind string

const (
	DocRFC      DocKind = "RFC"
	DocStandard DocKind = "STANDARD"
	DocRoadmap  DocKind = "ROADMAP"
	DocBaseline DocKind = "BASELINE"
)

// RankClass returns the tie-break class for result ordering:
// baseline and standards material ranks before RFC/roadmap prose.
func (k DocKind) RankClass() int {
	switch k {
	case DocBaseline, DocStandard:
		return 0
	default:
		return 1
	}
}

// Baseline names a FedRAMP impact-level control set.
type Baseline string

const (
	BaselineLow      Baseline = "LOW"
	BaselineModerate Baseline = "MODERATE"
	BaselineHigh     Baseline = "HIGH"
)

// Baselines lists all tiers in severity order.
var Baselines = []Baseline{BaselineLow, BaselineModerate, BaselineHigh}

// ParseBaseline maps user input ("low", "Moderate Baseline", "HIGH") to a tier.
func ParseBaseline(s string) (Baseline, bool) {
	switch normalizeBaselineName(s) {
	case "low":
		return BaselineLow, true
	case "moderate":
		return BaselineModerate, true
	case "high":
		return BaselineHigh, true
	}
	return "", false
}

func normalizeBaselineName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 'a' && c <= 'z' {
			out = append(out, c)
		}
	}
	// Strip the original workbook's " Baseline" sheet suffix.
	const suffix = "baseline"
	if len(out) > len(suffix) && string(out[len(out)-len(suffix):]) == suffix {
		out = out[:len(out)-len(suffix)]
	}
	return string(out)
}

// Segment is one contiguous run of document text. Start and End are byte
// offsets into the original file, kept for highlighting.
type Segment struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Document is an identified unit of content. Immutable once loaded; a refresh
// replaces the whole corpus, never a document in place.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        DocKind   `json:"kind"`
	Segments    []Segment `json:"segments"`
	ControlRefs []string  `json:"control_refs,omitempty"` // canonical IDs mentioned in the body
	Unresolved  []string  `json:"unresolved,omitempty"`   // refs with no matching Control
}

// Control is one baseline security control entry.
type Control struct {
	ID          string            `json:"id"` // canonical, e.g. "AC-2" or "AC-2(1)"
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Family      string            `json:"family"` // derived from the ID prefix
	Baselines   map[Baseline]bool `json:"baselines"`
	Params      map[string]string `json:"params,omitempty"` // FedRAMP-specific parameter guidance
}

// InBaseline reports membership in the given tier.
func (c *Control) InBaseline(b Baseline) bool {
	return c.Baselines[b]
}

// KSIControl is a Key Security Indicator entry.
type KSIControl struct {
	ID               string   `json:"id"` // e.g. "KSI-IAM-01"
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"` // e.g. "IAM"
	MappedControlIDs []string `json:"mapped_control_ids"`
	Unresolved       []string `json:"unresolved,omitempty"`
}

// KSICategoryNames maps KSI category codes to display names.
var KSICategoryNames = map[string]string{
	"CED": "Cybersecurity Education",
	"CMT": "Change Management",
	"CNA": "Cloud Native Architecture",
	"IAM": "Identity and Access Management",
	"INR": "Incident Reporting",
	"MLA": "Monitoring, Logging, and Auditing",
	"PIY": "Policy and Inventory",
	"RPL": "Recovery Planning",
	"SVC": "Service Configuration",
	"TPR": "Third-Party Information Resources",
}

// Corpus is the full loaded document set. Built off to the side and published
// atomically; readers never observe a partially loaded corpus.
type Corpus struct {
	Documents   map[string]*Document   `json:"documents"`
	Controls    map[string]*Control    `json:"controls"`
	KSIControls map[string]*KSIControl `json:"ksi_controls"`

	// Fingerprint is an xxhash digest of the source files, used to skip
	// rebuilds when nothing changed.
	Fingerprint uint64 `json:"fingerprint"`
}

// NewCorpus returns an empty corpus with all maps allocated.
func NewCorpus() *Corpus {
	return &Corpus{
		Documents:   make(map[string]*Document),
		Controls:    make(map[string]*Control),
		KSIControls: make(map[string]*KSIControl),
	}
}

// ResolveReferences splits every document ControlRefs list and every
// KSIControl mapping into resolved and unresolved halves against the loaded
// Controls table. Unresolved references are kept and surfaced, never dropped.
func (c *Corpus) ResolveReferences() {
	for _, doc := range c.Documents {
		resolved := doc.ControlRefs[:0]
		var unresolved []string
		for _, id := range doc.ControlRefs {
			if _, ok := c.Controls[id]; ok {
				resolved = append(resolved, id)
			} else {
				unresolved = append(unresolved, id)
			}
		}
		doc.ControlRefs = resolved
		doc.Unresolved = unresolved
	}
	for _, ksi := range c.KSIControls {
		resolved := ksi.MappedControlIDs[:0]
		var unresolved []string
		for _, id := range ksi.MappedControlIDs {
			if _, ok := c.Controls[id]; ok {
				resolved = append(resolved, id)
			} else {
				unresolved = append(unresolved, id)
			}
		}
		ksi.MappedControlIDs = resolved
		ksi.Unresolved = unresolved
	}
}
