// Package app wires the adapters to the engine: corpus loading, snapshot
// publication, refresh coalescing, and export serialization.
package app

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fortetroy/fedramp-explorer/internal/adapters/excel"
	"github.com/fortetroy/fedramp-explorer/internal/adapters/markdown"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// CorpusLoader implements ports.Loader over the mirrored source files.
type CorpusLoader struct{}

// NewCorpusLoader returns the standard file-based loader.
func NewCorpusLoader() *CorpusLoader { return &CorpusLoader{} }

// Load reads every configured source in parallel, each into its own partial
// corpus, then merges and resolves references. A failure in any source
// discards the whole load; partial corpora are never published.
func (l *CorpusLoader) Load(sources ports.Sources) (*ports.Corpus, error) {
	type task struct {
		run func(*ports.Corpus) error
	}
	tasks := []task{
		{func(c *ports.Corpus) error { return excel.LoadBaselines(sources.BaselinePath, c) }},
		{func(c *ports.Corpus) error { return markdown.LoadKSI(sources.KSIPath, c) }},
		{func(c *ports.Corpus) error { return markdown.LoadDocs(sources.StandardsDir, ports.DocStandard, c) }},
		{func(c *ports.Corpus) error { return markdown.LoadDocs(sources.RFCDir, ports.DocRFC, c) }},
		{func(c *ports.Corpus) error { return markdown.LoadDocs(sources.RoadmapDir, ports.DocRoadmap, c) }},
	}

	parts := make([]*ports.Corpus, len(tasks))
	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			part := ports.NewCorpus()
			if err := t.run(part); err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	corpus := ports.NewCorpus()
	for _, part := range parts {
		for id, d := range part.Documents {
			corpus.Documents[id] = d
		}
		for id, c := range part.Controls {
			corpus.Controls[id] = c
		}
		for id, k := range part.KSIControls {
			corpus.KSIControls[id] = k
		}
	}
	corpus.ResolveReferences()

	fp, err := Fingerprint(sources)
	if err != nil {
		return nil, err
	}
	corpus.Fingerprint = fp
	return corpus, nil
}

// Fingerprint digests every source file's path and content with xxhash.
// Identical sources always produce the same digest, so Refresh can skip the
// rebuild when nothing changed. Missing paths contribute nothing (rather
// than failing) so the digest stays comparable across optional sources.
func Fingerprint(sources ports.Sources) (uint64, error) {
	h := xxhash.New()
	for _, path := range sources.Paths() {
		files, err := listFiles(path)
		if err != nil {
			return 0, err
		}
		for _, f := range files {
			if err := hashFile(h, f); err != nil {
				return 0, err
			}
		}
	}
	return h.Sum64(), nil
}

// listFiles expands a source path into a sorted list of regular files.
func listFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.Mode().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func hashFile(h *xxhash.Digest, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &ports.SourceMissingError{Source: path, Err: err}
	}
	defer f.Close()
	h.WriteString(path)
	_, err = io.Copy(h, f)
	return err
}
