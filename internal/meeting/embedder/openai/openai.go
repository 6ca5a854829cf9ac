// Package openai provides an API-based embedder using chromem-go's
// built-in OpenAI embedding function.
package openai

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"
)

// text-embedding-3-small output size.
const dimensions = 1536

// Embedder embeds text via the OpenAI embeddings API.
type Embedder struct {
	embed chromem.EmbeddingFunc
}

// New creates an OpenAI embedder. A missing API key is a construction
// error so the process fails at startup rather than on first request.
func New(apiKey string) (*Embedder, error) {
	if apiKey == "" {
		return nil, goerr.New("OpenAI API key is required")
	}
	return &Embedder{
		embed: chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small),
	}, nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return dimensions
}
