// Package cached wraps an Embedder with a ristretto read-through cache.
// Embeddings are deterministic for a fixed model, so caching by input
// text is safe and saves repeated model or API calls for recurring
// queries.
package cached

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"

	"github.com/meetingmind/contextd/internal/meeting"
)

// Embedder is a caching decorator over another Embedder.
type Embedder struct {
	inner meeting.Embedder
	cache *ristretto.Cache
}

// New creates a cached embedder holding up to maxEntries embeddings.
func New(inner meeting.Embedder, maxEntries int64) (*Embedder, error) {
	if maxEntries <= 0 {
		return nil, goerr.New("cache size must be positive", goerr.V("max_entries", maxEntries))
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create embedding cache")
	}

	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, or computes and caches it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v.([]float32), nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vec, 1)
	// Set is buffered; wait so a repeat of the same query hits.
	e.cache.Wait()
	return vec, nil
}

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}
