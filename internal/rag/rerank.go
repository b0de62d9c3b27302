package rag

import (
	"sort"
	"strings"
)

// Weights are the hybrid reranking blend factors. The defaults encode a
// prior that vector similarity dominates while lexical and structural
// signals break near-ties.
type Weights struct {
	// Vector scales the cosine similarity score.
	Vector float64
	// Keyword scales the query/content word overlap.
	Keyword float64
	// Heading is the boost when a query word appears in the chunk heading.
	Heading float64
	// Title is the additional boost when a query word appears in the page title.
	Title float64
	// Level is the per-level boost for sections shallower than level 4.
	Level float64
}

// DefaultWeights returns the standard reranking weights.
func DefaultWeights() Weights {
	return Weights{
		Vector:  0.6,
		Keyword: 0.25,
		Heading: 0.2,
		Title:   0.1,
		Level:   0.02,
	}
}

// Rerank rescores results with a blend of vector, keyword and
// structural signals and stable-sorts them by the blended score, so
// ties keep their vector-score relative order. The scoring is
// deterministic and independent of input order.
func Rerank(query string, results []SearchResult, w Weights) []SearchResult {
	queryWords := wordSet(query)

	for i := range results {
		r := &results[i]

		contentWords := wordSet(r.Content)
		overlap := 0
		for word := range queryWords {
			if _, ok := contentWords[word]; ok {
				overlap++
			}
		}
		denominator := len(queryWords)
		if denominator < 1 {
			denominator = 1
		}
		r.KeywordScore = float64(overlap) / float64(denominator)

		heading := strings.ToLower(r.Heading)
		title := strings.ToLower(r.Title)
		boost := 0.0
		if anyWordIn(queryWords, heading) {
			boost += w.Heading
		}
		if anyWordIn(queryWords, title) {
			boost += w.Title
		}

		levelBoost := 0.0
		if r.SectionLevel < 4 {
			levelBoost = float64(4-r.SectionLevel) * w.Level
		}

		r.RerankScore = w.Vector*r.VectorScore + w.Keyword*r.KeywordScore + boost + levelBoost
		r.Reranked = true
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RerankScore > results[j].RerankScore
	})
	return results
}

// wordSet returns the case-folded whitespace tokens of text as a set.
func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// anyWordIn reports whether any word substring-matches text.
func anyWordIn(words map[string]struct{}, text string) bool {
	if text == "" {
		return false
	}
	for word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
