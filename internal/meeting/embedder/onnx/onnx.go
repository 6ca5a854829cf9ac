//go:build onnx

package onnx

import (
	"context"
	"math"

	"github.com/m-mizutani/goerr/v2"
	ort "github.com/yalue/onnxruntime_go"
)

// maxSeqLen is the model's input sequence length.
const maxSeqLen = 128

// Embedder runs a BERT-family sentence-transformer through ONNX Runtime
// and mean-pools the last hidden state into a unit vector.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New creates the ONNX embedder. Any initialization failure (missing
// model, library or tokenizer) should be treated as fatal by the caller.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, goerr.New("ONNX model path is required")
	}
	if cfg.TokenizerPath == "" {
		return nil, goerr.New("ONNX tokenizer path is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize ONNX runtime")
	}

	tokenizer, err := loadWordPieceTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load tokenizer", goerr.V("path", cfg.TokenizerPath))
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ONNX session", goerr.V("model", cfg.ModelPath))
	}

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed converts text to a unit embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inputIDs, attentionMask := e.tokenizer.encode(text, maxSeqLen)
	tokenTypeIDs := make([]int64, maxSeqLen)

	shape := ort.NewShape(1, int64(maxSeqLen))

	inputTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create input_ids tensor")
	}
	defer inputTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create attention_mask tensor")
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token_type_ids tensor")
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	err = e.session.Run([]ort.Value{inputTensor, maskTensor, typeTensor}, outputs)
	if err != nil {
		return nil, goerr.Wrap(err, "ONNX inference failed")
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, goerr.New("unexpected output tensor type")
	}

	embedding, err := meanPool(outTensor.GetData(), outTensor.GetShape(), attentionMask, e.dimensions)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// meanPool reduces [1, seq, hidden] to [hidden] over attended tokens.
// Already-pooled [1, hidden] output is passed through.
func meanPool(data []float32, shape []int64, attentionMask []int64, dims int) ([]float32, error) {
	switch len(shape) {
	case 2:
		if len(data) < dims {
			return nil, goerr.New("output dimension mismatch",
				goerr.V("got", len(data)), goerr.V("want", dims))
		}
		out := make([]float32, dims)
		copy(out, data[:dims])
		return out, nil

	case 3:
		seqLen, hidden := int(shape[1]), int(shape[2])
		if hidden != dims {
			return nil, goerr.New("hidden size mismatch",
				goerr.V("got", hidden), goerr.V("want", dims))
		}

		out := make([]float32, dims)
		var attended float32
		for i := 0; i < seqLen; i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				out[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return out, nil
		}
		for j := range out {
			out[j] /= attended
		}
		return out, nil
	}

	return nil, goerr.New("unexpected output shape", goerr.V("shape", shape))
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
