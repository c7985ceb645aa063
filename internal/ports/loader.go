package ports

// Sources names the mirrored files and directories a corpus is loaded from.
// The mirroring itself (submodule sync) is an external collaborator; the
// engine only ever sees these local paths.
type Sources struct {
	BaselinePath string `yaml:"baseline"` // control baseline workbook (.xlsx)
	KSIPath      string `yaml:"ksi"`      // key security indicators markdown
	StandardsDir string `yaml:"standards"`
	RFCDir       string `yaml:"rfcs"`
	RoadmapDir   string `yaml:"roadmap"`
}

// Paths returns all configured source paths, empty entries skipped.
// Order is stable so fingerprints are reproducible.
func (s Sources) Paths() []string {
	var out []string
	for _, p := range []string{s.BaselinePath, s.KSIPath, s.StandardsDir, s.RFCDir, s.RoadmapDir} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Loader assembles a Corpus from a source set. A failed load returns an
// error and no corpus — partial loads are discarded, never merged.
type Loader interface {
	Load(sources Sources) (*Corpus, error)
}
