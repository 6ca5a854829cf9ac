// Package mock provides a deterministic embedder for tests.
package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// tokenSpread is how many vector components each token contributes to.
const tokenSpread = 4

// Embedder generates deterministic embeddings from a bag of hashed
// tokens: texts sharing words land on shared components and therefore
// score higher cosine similarity. Not semantic, but good enough to test
// similarity ordering without model files.
type Embedder struct {
	dims int
}

// New creates a mock embedder with a small default dimensionality.
func New() *Embedder {
	return &Embedder{dims: 128}
}

// NewWithDimensions creates a mock embedder with the given vector size.
func NewWithDimensions(dims int) *Embedder {
	return &Embedder{dims: dims}
}

// Embed converts text to a unit vector. Deterministic for identical
// input.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		if token == "" {
			continue
		}

		h := fnv.New64a()
		h.Write([]byte(token))
		seed := h.Sum64()

		for i := 0; i < tokenSpread; i++ {
			// LCG step spreads the token over pseudo-random components.
			seed = seed*6364136223846793005 + 1442695040888963407
			idx := int(seed % uint64(e.dims))
			if seed&(1<<63) != 0 {
				vec[idx] -= 1
			} else {
				vec[idx] += 1
			}
		}
	}

	return normalize(vec), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// normalize converts the vector to unit length. An all-zero vector
// (empty text) gets a fixed component so cosine similarity stays
// defined.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
