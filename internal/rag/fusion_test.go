package rag

import (
	"testing"

	"rocon-docs-ai/internal/corpus"
)

func reranked(id, url string, score float64) SearchResult {
	return SearchResult{
		Chunk:       corpus.Chunk{ChunkID: id, URL: url},
		RerankScore: score,
		Reranked:    true,
	}
}

func TestFuseDeduplicates(t *testing.T) {
	perQuery := [][]SearchResult{
		{reranked("x", "https://docs.example.com/a", 0.9)},
		{reranked("x", "https://docs.example.com/a", 0.8)},
		{reranked("y", "https://docs.example.com/b", 0.7)},
	}

	fused := Fuse(perQuery, fusedLimit)
	if len(fused) != 2 {
		t.Fatalf("expected 2 fused results, got %d", len(fused))
	}

	seen := make(map[string]int)
	for _, r := range fused {
		seen[r.ChunkID+r.URL]++
	}
	for key, count := range seen {
		if count != 1 {
			t.Errorf("key %q appears %d times", key, count)
		}
	}
}

func TestFuseKeepsSameChunkIDAtDifferentURLs(t *testing.T) {
	perQuery := [][]SearchResult{
		{reranked("x", "https://docs.example.com/a", 0.9)},
		{reranked("x", "https://docs.example.com/b", 0.8)},
	}

	fused := Fuse(perQuery, fusedLimit)
	if len(fused) != 2 {
		t.Fatalf("expected both URL variants kept, got %d", len(fused))
	}
}

func TestFuseRanksAndTruncates(t *testing.T) {
	var perQuery [][]SearchResult
	for i := 0; i < 12; i++ {
		perQuery = append(perQuery, []SearchResult{
			reranked(string(rune('a'+i)), "https://docs.example.com/p", float64(i)/12),
		})
	}

	fused := Fuse(perQuery, fusedLimit)
	if len(fused) != fusedLimit {
		t.Fatalf("expected %d results, got %d", fusedLimit, len(fused))
	}
	for i := 1; i < len(fused); i++ {
		if fused[i].FinalScore() > fused[i-1].FinalScore() {
			t.Errorf("results not in descending score order at %d", i)
		}
	}
}

func TestFuseIdempotent(t *testing.T) {
	perQuery := [][]SearchResult{
		{
			reranked("a", "https://docs.example.com/1", 0.9),
			reranked("b", "https://docs.example.com/2", 0.3),
		},
		{
			reranked("c", "https://docs.example.com/3", 0.6),
			reranked("a", "https://docs.example.com/1", 0.5),
		},
	}

	once := Fuse(perQuery, fusedLimit)
	twice := Fuse([][]SearchResult{once}, fusedLimit)

	if len(once) != len(twice) {
		t.Fatalf("fusion not idempotent: %d vs %d results", len(once), len(twice))
	}
	for i := range once {
		if once[i].ChunkID != twice[i].ChunkID || once[i].FinalScore() != twice[i].FinalScore() {
			t.Errorf("result %d changed on refusion: %s vs %s", i, once[i].ChunkID, twice[i].ChunkID)
		}
	}
}

func TestFuseVectorScoreFallback(t *testing.T) {
	// Results that never went through the reranker rank by vector score.
	perQuery := [][]SearchResult{
		{
			{Chunk: corpus.Chunk{ChunkID: "low", URL: "u1"}, VectorScore: 0.2},
			{Chunk: corpus.Chunk{ChunkID: "high", URL: "u2"}, VectorScore: 0.8},
		},
	}

	fused := Fuse(perQuery, fusedLimit)
	if fused[0].ChunkID != "high" {
		t.Errorf("expected vector score ordering, got %s first", fused[0].ChunkID)
	}
}
