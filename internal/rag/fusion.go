package rag

import "sort"

// fusedLimit is how many chunks survive fusion into the final answer
// context.
const fusedLimit = 8

// Fuse merges the candidate sets produced from multiple expanded
// queries into one ranked, deduplicated list. The dedup key is chunk_id
// concatenated with url: identical content at different URLs stays
// distinct, repeated retrievals of the same chunk collapse to one.
// Fusion is idempotent: fusing an already-fused list returns it
// unchanged.
func Fuse(perQuery [][]SearchResult, limit int) []SearchResult {
	seen := make(map[string]struct{})
	var fused []SearchResult

	for _, results := range perQuery {
		for _, r := range results {
			key := r.ChunkID + r.URL
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			fused = append(fused, r)
		}
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].FinalScore() > fused[j].FinalScore()
	})

	if limit > 0 && len(fused) > limit {
		fused = fused[:limit]
	}
	return fused
}
