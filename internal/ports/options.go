package ports

// SearchMode selects the query resolution path.
type SearchMode string

const (
	// ModeGlobal searches free text across all documents, controls, and KSIs.
	ModeGlobal SearchMode = "GLOBAL"
	// ModeControl resolves control-ID queries first, then falls back to text.
	ModeControl SearchMode = "CONTROL"
)

// SearchOptions controls query behavior. Zero value means GLOBAL mode with
// defaults applied by the engine.
type SearchOptions struct {
	Mode     SearchMode
	Families []string // filter: control families (e.g. "AC", "SC")
	Baseline Baseline // filter: only entries in this baseline ("" = any)
	KSIOnly  bool     // filter: only KSI-related entries

	MaxResults    int // result cap (default 20)
	SnippetWindow int // context chars on each side of a match (default 100)
	FuzzyDistance int // edit-distance budget override (0 = length-based default)
}
