//go:build !onnx

package onnx

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// Embedder is unavailable without the "onnx" build tag.
type Embedder struct{}

// New fails in builds without ONNX support so misconfiguration surfaces
// at startup.
func New(Config) (*Embedder, error) {
	return nil, goerr.New("binary built without onnx support (rebuild with -tags onnx)")
}

// Embed satisfies the Embedder interface; never reachable because New
// always fails.
func (e *Embedder) Embed(context.Context, string) ([]float32, error) {
	return nil, goerr.New("binary built without onnx support")
}

// Dimensions satisfies the Embedder interface.
func (e *Embedder) Dimensions() int {
	return 0
}
