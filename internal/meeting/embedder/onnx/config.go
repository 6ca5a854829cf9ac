// Package onnx provides a local embedder running a sentence-transformer
// model through ONNX Runtime. It is compiled only with the "onnx" build
// tag; the default build returns a construction error instead.
package onnx

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json vocabulary.
	TokenizerPath string

	// LibraryPath is the path to the onnxruntime shared library.
	LibraryPath string

	// Dimensions is the embedding vector size.
	// Defaults to 384 (all-MiniLM-L6-v2).
	Dimensions int
}
