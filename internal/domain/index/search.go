package index

import (
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

const (
	defaultMaxResults    = 20
	defaultSnippetWindow = 100
	maxSnippetsPerHit    = 3

	// directIDBonus ranks an exact ID lookup above any token-weight sum.
	directIDBonus = 100.0

	// vocabFalsePositiveRate sizes the bloom filter over the vocabulary.
	vocabFalsePositiveRate = 0.01
)

// Hit is a single ranked result.
type Hit struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Kind       ports.DocKind    `json:"kind"`
	Score      float64          `json:"score"`
	Family     string           `json:"family,omitempty"`
	Baselines  []ports.Baseline `json:"baselines,omitempty"`
	IsControl  bool             `json:"is_control,omitempty"`
	IsKSI      bool             `json:"is_ksi,omitempty"`
	Snippets   []Snippet        `json:"snippets,omitempty"`
	Unresolved []string         `json:"unresolved,omitempty"`
}

// SearchResult is the output of one query. Corrections carries fuzzy
// replacements ("did you mean") when the fallback path produced the hits.
type SearchResult struct {
	Hits        []Hit    `json:"hits"`
	Total       int      `json:"total"`
	Corrections []string `json:"corrections,omitempty"`
}

// Engine answers queries against one published corpus/index pair. It is
// immutable after construction, so concurrent reads need no locking; a
// refresh builds a new Engine and swaps the pointer.
type Engine struct {
	corpus *ports.Corpus
	idx    *Index
	vocab  *bloom.BloomFilter
}

// NewEngine builds the index and vocabulary filter for a corpus.
func NewEngine(corpus *ports.Corpus) *Engine {
	idx := Build(corpus)
	n := uint(len(idx.Vocab))
	if n == 0 {
		n = 1
	}
	filter := bloom.NewWithEstimates(n, vocabFalsePositiveRate)
	for _, tok := range idx.Vocab {
		filter.AddString(tok)
	}
	return &Engine{corpus: corpus, idx: idx, vocab: filter}
}

// Corpus returns the corpus this engine was built from.
func (e *Engine) Corpus() *ports.Corpus { return e.corpus }

// Index returns the built index (read-only).
func (e *Engine) Index() *Index { return e.idx }

// Search resolves a query: exact/substring lookup first, fuzzy fallback only
// when that yields nothing, then rank, filter, and snippet extraction.
// An empty normalized query returns an empty result, not an error.
func (e *Engine) Search(query string, opts ports.SearchOptions) *SearchResult {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.SnippetWindow <= 0 {
		opts.SnippetWindow = defaultSnippetWindow
	}

	acc := newAccumulator()

	// Exact ID resolution is the highest-precedence path. In CONTROL mode it
	// is the point of the query; in GLOBAL mode a query that parses as an ID
	// still pins the entry itself above prose mentions.
	tokens := Tokenize(query)
	if id, ok := CanonicalControlID(query); ok {
		if _, exists := e.idx.Entries[id]; exists {
			acc.add(id, directIDBonus, titleSegment)
		}
		tokens = append(tokens, strings.ToLower(id))
	} else if id, ok := CanonicalKSIID(query); ok {
		if _, exists := e.idx.Entries[id]; exists {
			acc.add(id, directIDBonus, titleSegment)
		}
		tokens = append(tokens, strings.ToLower(id))
	} else if opts.Mode == ports.ModeControl {
		// CONTROL mode with an unparseable ID: fall through to text search
		// over the ID-bearing fields rather than failing.
		tokens = append(tokens, strings.ToLower(strings.TrimSpace(query)))
	}

	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return &SearchResult{}
	}

	matched := e.lookupAll(tokens, acc)

	var corrections []string
	if !matched && acc.empty() {
		// Fuzzy fallback: correct each token against the vocabulary and
		// re-run the exact lookup with the corrected terms.
		corrected := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			budget := opts.FuzzyDistance
			if budget <= 0 {
				budget = FuzzyBudget(tok)
			}
			cands := FuzzyMatch(tok, e.idx.Vocab, budget)
			if len(cands) == 0 {
				continue
			}
			corrected = append(corrected, cands[0].Term)
			if cands[0].Term != tok {
				corrections = append(corrections, cands[0].Term)
			}
		}
		if len(corrected) > 0 {
			e.lookupAll(corrected, acc)
			tokens = corrected
		}
	}

	hits := e.collect(acc, tokens, opts)
	total := len(hits)
	if len(hits) > opts.MaxResults {
		hits = hits[:opts.MaxResults]
	}
	return &SearchResult{Hits: hits, Total: total, Corrections: corrections}
}

// lookupAll runs the index lookup for every token, accumulating per-entry
// scores. Returns true if any token had postings. The bloom filter screens
// out definitely-absent tokens before the map probe.
func (e *Engine) lookupAll(tokens []string, acc *accumulator) bool {
	any := false
	for _, tok := range tokens {
		if !e.vocab.TestString(tok) {
			continue
		}
		for _, p := range e.idx.Lookup(tok) {
			acc.addToken(p.EntryID, tok, p.Weight, p.Segment)
			any = true
		}
	}
	return any
}

// collect applies filters, ranks, and extracts snippets.
func (e *Engine) collect(acc *accumulator, tokens []string, opts ports.SearchOptions) []Hit {
	var hits []Hit
	for _, id := range acc.ids {
		entry := e.idx.Entries[id]
		if entry == nil || !e.passesFilters(entry, opts) {
			continue
		}
		s := acc.scores[id]
		hit := Hit{
			ID:         entry.ID,
			Title:      entry.Title,
			Kind:       entry.Kind,
			Score:      s.score,
			Family:     entry.Family,
			Baselines:  entry.Baselines,
			IsControl:  entry.IsControl,
			IsKSI:      entry.IsKSI,
			Unresolved: entry.Unresolved,
		}
		hit.Snippets = e.snippets(entry, s, tokens, opts.SnippetWindow)
		hits = append(hits, hit)
	}

	// Rank: score desc, kind class (baseline/standard first), ID asc.
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		ci, cj := hits[i].Kind.RankClass(), hits[j].Kind.RankClass()
		if ci != cj {
			return ci < cj
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// passesFilters applies the family/baseline/ksiOnly filters to an entry.
func (e *Engine) passesFilters(entry *Entry, opts ports.SearchOptions) bool {
	if opts.KSIOnly && !entry.IsKSI {
		return false
	}
	if opts.Baseline != "" {
		if !entry.IsControl {
			return false
		}
		found := false
		for _, b := range entry.Baselines {
			if b == opts.Baseline {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(opts.Families) > 0 {
		ok := false
		for _, fam := range opts.Families {
			if strings.EqualFold(entry.Family, fam) || entry.RefFamilies[strings.ToUpper(fam)] {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// snippets extracts up to maxSnippetsPerHit body extracts for the matched
// tokens, preferring the segments the postings actually pointed at.
func (e *Engine) snippets(entry *Entry, s *entryScore, tokens []string, window int) []Snippet {
	var out []Snippet
	seen := make(map[int]bool)
	for _, tok := range tokens {
		if len(out) >= maxSnippetsPerHit {
			break
		}
		seg, ok := s.segments[tok]
		if !ok || seg == titleSegment || seg >= len(entry.Segments) || seen[seg] {
			continue
		}
		if snip, found := extractSnippet(entry.Segments[seg], tok, window); found {
			out = append(out, snip)
			seen[seg] = true
		}
	}
	return out
}

// dedupe drops repeated tokens, keeping first-occurrence order, so a term
// repeated in the query cannot double-count.
func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}

// accumulator sums per-entry scores and remembers, per token, the
// best-weighted segment for snippet extraction. Insertion order is preserved
// so ranking ties stay deterministic before the final sort.
type accumulator struct {
	ids    []string
	scores map[string]*entryScore
}

type entryScore struct {
	score    float64
	segments map[string]int // token -> segment of its strongest posting
	weights  map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{scores: make(map[string]*entryScore)}
}

func (a *accumulator) empty() bool { return len(a.ids) == 0 }

func (a *accumulator) get(id string) *entryScore {
	s, ok := a.scores[id]
	if !ok {
		s = &entryScore{segments: make(map[string]int), weights: make(map[string]float64)}
		a.scores[id] = s
		a.ids = append(a.ids, id)
	}
	return s
}

func (a *accumulator) add(id string, weight float64, segment int) {
	s := a.get(id)
	s.score += weight
}

func (a *accumulator) addToken(id, token string, weight float64, segment int) {
	s := a.get(id)
	s.score += weight
	prev, ok := s.segments[token]
	switch {
	case !ok:
		s.segments[token] = segment
		s.weights[token] = weight
	case segment == titleSegment:
		// A title posting carries no snippet text; never displace a body one.
	case prev == titleSegment || weight > s.weights[token]:
		s.segments[token] = segment
		s.weights[token] = weight
	}
}
