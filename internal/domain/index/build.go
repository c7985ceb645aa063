package index

import (
	"sort"
	"strings"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Relevance weights. Title and control-ID matches outrank body prose so a
// query for a control's name surfaces the control before documents that
// merely mention it.
const (
	bodyWeight     = 1.0
	titleBonus     = 5.0
	controlIDBonus = 10.0
)

// titleSegment marks a posting that matched in an entry's title or ID field
// rather than a body segment.
const titleSegment = -1

// Entry is one searchable unit: a document, a control, or a KSI rendered
// into a uniform shape for ranking and snippet extraction.
type Entry struct {
	ID        string
	Title     string
	Kind      ports.DocKind
	IsControl bool
	IsKSI     bool
	Family    string           // control family or KSI category
	Baselines []ports.Baseline // for controls: tiers the control appears in
	Segments  []ports.Segment
	// RefFamilies holds the families of controls a document references,
	// used by the family filter for prose documents.
	RefFamilies map[string]bool
	// Unresolved carries control references that did not resolve against the
	// loaded baseline set. Surfaced in results, never dropped.
	Unresolved []string
}

// Posting locates one token occurrence set: the entry, which segment it
// matched in (titleSegment for title/ID matches), and its relevance weight.
type Posting struct {
	EntryID string
	Segment int
	Weight  float64
}

// Index is the inverted token index plus the entry table and ID lookup.
// Built wholesale from a corpus; never patched incrementally.
type Index struct {
	Postings map[string][]Posting
	Entries  map[string]*Entry
	EntryIDs []string // sorted, for deterministic iteration
	Vocab    []string // sorted token vocabulary for fuzzy fallback
}

// Build constructs an index from a corpus. Pure function: the same corpus
// always yields an identical index, which is what makes hot-swap publication
// and byte-level determinism tests possible.
func Build(corpus *ports.Corpus) *Index {
	idx := &Index{
		Postings: make(map[string][]Posting),
		Entries:  make(map[string]*Entry),
	}

	for _, doc := range sortedDocs(corpus) {
		e := &Entry{
			ID:          doc.ID,
			Title:       doc.Title,
			Kind:        doc.Kind,
			Segments:    doc.Segments,
			Unresolved:  doc.Unresolved,
			RefFamilies: make(map[string]bool),
		}
		for _, ref := range doc.ControlRefs {
			if fam := ControlFamily(ref); fam != "" {
				e.RefFamilies[fam] = true
			}
		}
		idx.addEntry(e)
	}

	for _, ctl := range sortedControls(corpus) {
		e := &Entry{
			ID:        ctl.ID,
			Title:     ctl.Name,
			Kind:      ports.DocBaseline,
			IsControl: true,
			Family:    ctl.Family,
			Baselines: sortedBaselines(ctl.Baselines),
			Segments:  []ports.Segment{{Text: ctl.Description, Start: 0, End: len(ctl.Description)}},
		}
		idx.addEntry(e)
		// The canonical ID itself is indexed as a single token so an exact
		// lowercase spelling ("ac-2") hits without going through Tokenize.
		idx.post(strings.ToLower(ctl.ID), Posting{EntryID: e.ID, Segment: titleSegment, Weight: controlIDBonus})
	}

	for _, ksi := range sortedKSIs(corpus) {
		e := &Entry{
			ID:         ksi.ID,
			Title:      ksi.Name,
			Kind:       ports.DocStandard,
			IsKSI:      true,
			Family:     ksi.Category,
			Segments:   []ports.Segment{{Text: ksi.Description, Start: 0, End: len(ksi.Description)}},
			Unresolved: ksi.Unresolved,
		}
		idx.addEntry(e)
		idx.post(strings.ToLower(ksi.ID), Posting{EntryID: e.ID, Segment: titleSegment, Weight: controlIDBonus})
	}

	idx.finish()
	return idx
}

// addEntry registers an entry and indexes its title and body segments.
func (x *Index) addEntry(e *Entry) {
	x.Entries[e.ID] = e
	x.EntryIDs = append(x.EntryIDs, e.ID)

	for _, tok := range Tokenize(e.Title) {
		x.post(tok, Posting{EntryID: e.ID, Segment: titleSegment, Weight: titleBonus})
	}
	for i, seg := range e.Segments {
		counts := make(map[string]int)
		for _, tok := range Tokenize(seg.Text) {
			counts[tok]++
		}
		// Control IDs mentioned in the segment are indexed whole, so an ID
		// query surfaces the prose that cites the control, not only the
		// control entry itself.
		for _, raw := range refRe.FindAllString(seg.Text, -1) {
			if id, ok := CanonicalControlID(raw); ok {
				counts[strings.ToLower(id)]++
			}
		}
		for _, tok := range sortedKeys(counts) {
			x.post(tok, Posting{EntryID: e.ID, Segment: i, Weight: bodyWeight * float64(counts[tok])})
		}
	}
}

func (x *Index) post(token string, p Posting) {
	x.Postings[token] = append(x.Postings[token], p)
}

// finish sorts posting lists (weight desc, entry ID asc, segment asc) and
// freezes the vocabulary. Ordering is the determinism contract for Lookup.
func (x *Index) finish() {
	for tok, ps := range x.Postings {
		sort.SliceStable(ps, func(i, j int) bool {
			if ps[i].Weight != ps[j].Weight {
				return ps[i].Weight > ps[j].Weight
			}
			if ps[i].EntryID != ps[j].EntryID {
				return ps[i].EntryID < ps[j].EntryID
			}
			return ps[i].Segment < ps[j].Segment
		})
		x.Postings[tok] = ps
	}
	x.Vocab = make([]string, 0, len(x.Postings))
	for tok := range x.Postings {
		x.Vocab = append(x.Vocab, tok)
	}
	sort.Strings(x.Vocab)
	sort.Strings(x.EntryIDs)
}

// Lookup returns the posting list for a token, already in relevance order.
func (x *Index) Lookup(token string) []Posting {
	return x.Postings[token]
}

func sortedDocs(c *ports.Corpus) []*ports.Document {
	out := make([]*ports.Document, 0, len(c.Documents))
	for _, d := range c.Documents {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedControls(c *ports.Corpus) []*ports.Control {
	out := make([]*ports.Control, 0, len(c.Controls))
	for _, ctl := range c.Controls {
		out = append(out, ctl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedKSIs(c *ports.Corpus) []*ports.KSIControl {
	out := make([]*ports.KSIControl, 0, len(c.KSIControls))
	for _, k := range c.KSIControls {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedBaselines(set map[ports.Baseline]bool) []ports.Baseline {
	var out []ports.Baseline
	for _, b := range ports.Baselines {
		if set[b] {
			out = append(out, b)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
