// Package markdown loads the prose side of the corpus: RFC, standards, and
// roadmap documents plus the Key Security Indicators catalog, all maintained
// upstream as markdown files.
package markdown

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fortetroy/fedramp-explorer/internal/domain/index"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// LoadDocs reads every .md file under dir into the corpus as documents of the
// given kind. A missing or empty directory is not an error — not every
// deployment mirrors every document category. File order is sorted so corpus
// construction stays deterministic.
func LoadDocs(dir string, kind ports.DocKind, corpus *ports.Corpus) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ports.SourceMissingError{Source: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return &ports.SourceMissingError{Source: path, Err: err}
		}
		doc := parseDoc(name, kind, string(raw))
		corpus.Documents[doc.ID] = doc
	}
	return nil
}

// parseDoc turns one markdown file into a Document: ID from the filename,
// title from the first heading, body split into paragraph segments with byte
// offsets preserved for highlighting.
func parseDoc(filename string, kind ports.DocKind, content string) *ports.Document {
	id := strings.TrimSuffix(filename, filepath.Ext(filename))
	doc := &ports.Document{
		ID:    id,
		Title: id,
		Kind:  kind,
	}

	doc.Segments = segment(content)
	for _, seg := range doc.Segments {
		if title, ok := headingText(seg.Text); ok {
			doc.Title = title
			break
		}
	}
	doc.ControlRefs = index.ExtractControlRefs(content)
	return doc
}

// segment splits content into blank-line-separated paragraphs, each carrying
// its byte offset range within the original file.
func segment(content string) []ports.Segment {
	var segs []ports.Segment
	start := -1
	blank := 0 // consecutive newline count at the current scan position

	flush := func(end int) {
		if start < 0 {
			return
		}
		text := strings.TrimRight(content[start:end], "\r\n")
		if strings.TrimSpace(text) != "" {
			segs = append(segs, ports.Segment{Text: text, Start: start, End: start + len(text)})
		}
		start = -1
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch c {
		case '\n':
			blank++
			if blank >= 2 {
				flush(i)
			}
		case '\r':
			// counted with the following \n
		default:
			blank = 0
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(content))
	return segs
}

// headingText extracts the text of a markdown ATX heading ("# Title"); the
// first one in a file is its display title.
func headingText(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	title := strings.TrimSpace(strings.TrimLeft(line, "#"))
	if title == "" {
		return "", false
	}
	// A multi-line first segment keeps only its heading line.
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return title, true
}
