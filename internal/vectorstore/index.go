package vectorstore

import (
	"context"
	"math"
)

// Hit is a single nearest-neighbor match. Position indexes into the
// chunk corpus the index was built from; a negative position is a
// no-match sentinel and must be skipped by callers.
type Hit struct {
	Position int
	Score    float32
}

// Index is a nearest-neighbor search structure over chunk embeddings.
// Queries must be unit-normalized so inner-product search equals cosine
// similarity. Implementations are read-only after build and safe for
// concurrent searches.
type Index interface {
	// Search returns up to k hits ordered by descending score.
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)

	// Size returns the number of vectors in the index.
	Size() int
}

// NormalizeL2 scales v to unit length in place. Zero vectors are left
// unchanged.
func NormalizeL2(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
