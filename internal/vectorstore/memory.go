package vectorstore

import (
	"context"
	"fmt"
	"sort"
)

// Memory is a flat inner-product index held fully in memory. Vector i
// corresponds to corpus position i. With unit-normalized vectors the
// inner product is the cosine similarity.
type Memory struct {
	dim     int
	vectors [][]float32
}

// NewMemory creates an empty in-memory index for vectors of the given
// dimension.
func NewMemory(dim int) *Memory {
	return &Memory{dim: dim}
}

// Add appends vectors to the index in corpus order. Vectors are stored
// as given; callers normalize before adding.
func (m *Memory) Add(vectors ...[]float32) error {
	for _, v := range vectors {
		if len(v) != m.dim {
			return fmt.Errorf("vector has size %d, expected %d", len(v), m.dim)
		}
		m.vectors = append(m.vectors, v)
	}
	return nil
}

// Size returns the number of vectors in the index.
func (m *Memory) Size() int {
	return len(m.vectors)
}

// Dim returns the vector dimension.
func (m *Memory) Dim() int {
	return m.dim
}

// Search scores every vector against the query and returns the top k
// hits by descending inner product. Ties keep ascending position order.
func (m *Memory) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if len(query) != m.dim {
		return nil, fmt.Errorf("query vector has size %d, expected %d", len(query), m.dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hits := make([]Hit, len(m.vectors))
	for i, v := range m.vectors {
		var dot float32
		for j := range v {
			dot += v[j] * query[j]
		}
		hits[i] = Hit{Position: i, Score: dot}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}
