package index

import "sort"

// FuzzyCandidate pairs a vocabulary term with its edit distance from the query.
type FuzzyCandidate struct {
	Term     string
	Distance int
}

// FuzzyBudget returns the default edit-distance budget for a query token:
// one edit for short tokens, two for everything else. Proportional to length
// so short control families ("ac") don't fuzz into unrelated ones.
func FuzzyBudget(token string) int {
	if len(token) <= 4 {
		return 1
	}
	return 2
}

// FuzzyMatch returns vocabulary terms within maxDistance edits of the query,
// ordered by distance, then shorter candidate, then lexical. Candidates over
// budget are excluded entirely. Fuzzy matching is a fallback: the engine only
// calls this after exact lookup returned zero results, so approximate hits
// can never mask precise ones.
func FuzzyMatch(query string, candidates []string, maxDistance int) []FuzzyCandidate {
	if query == "" || maxDistance < 0 {
		return nil
	}
	var out []FuzzyCandidate
	for _, cand := range candidates {
		// Length difference is a lower bound on edit distance.
		if diff := len(cand) - len(query); diff > maxDistance || -diff > maxDistance {
			continue
		}
		if d := editDistance(query, cand, maxDistance); d <= maxDistance {
			out = append(out, FuzzyCandidate{Term: cand, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if len(out[i].Term) != len(out[j].Term) {
			return len(out[i].Term) < len(out[j].Term)
		}
		return out[i].Term < out[j].Term
	})
	return out
}

// editDistance computes unit-cost Levenshtein distance (insert, delete,
// substitute) between a and b, giving up early with limit+1 once every cell
// in a row exceeds limit.
func editDistance(a, b string, limit int) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
