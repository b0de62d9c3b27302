package rag

import (
	"strings"

	"rocon-docs-ai/internal/corpus"
)

const (
	// contextWindow is the number of adjacent chunks merged on each side
	// of a result.
	contextWindow = 1
	// contextDelimiter separates merged chunks inside ContentWithContext.
	contextDelimiter = "\n\n---\n\n"
)

// ExpandContext populates ContentWithContext on each result by merging
// in textually-adjacent chunks from the same page, and keeps only the
// first result per URL so one page cannot dominate the final answer.
func ExpandContext(store *corpus.Store, results []SearchResult) []SearchResult {
	expanded := make([]SearchResult, 0, len(results))
	seenURLs := make(map[string]struct{}, len(results))

	for _, r := range results {
		if _, seen := seenURLs[r.URL]; seen {
			continue
		}
		seenURLs[r.URL] = struct{}{}

		neighbors := store.Neighbors(r.URL, r.ChunkIndex, contextWindow)
		if len(neighbors) > 1 {
			parts := make([]string, len(neighbors))
			for i, c := range neighbors {
				parts[i] = c.Content
			}
			r.ContentWithContext = strings.Join(parts, contextDelimiter)
		} else {
			r.ContentWithContext = r.Content
		}

		expanded = append(expanded, r)
	}

	return expanded
}
