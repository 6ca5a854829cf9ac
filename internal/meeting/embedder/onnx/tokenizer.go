//go:build onnx

package onnx

import (
	"encoding/json"
	"os"
	"strings"
)

// BERT special token IDs.
const (
	tokenCLS = 101
	tokenSEP = 102
	tokenUNK = 100
)

// wordPieceTokenizer is a minimal BERT WordPiece tokenizer backed by a
// tokenizer.json vocabulary. It lowercases input and strips surrounding
// punctuation; that is enough for the sentence-transformer checkpoints
// this embedder targets.
type wordPieceTokenizer struct {
	vocab map[string]int
}

func loadWordPieceTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &wordPieceTokenizer{vocab: file.Model.Vocab}, nil
}

// encode tokenizes text into fixed-length input_ids and attention_mask
// slices, wrapped in [CLS] ... [SEP] and truncated to maxLen.
func (t *wordPieceTokenizer) encode(text string, maxLen int) ([]int64, []int64) {
	tokens := t.tokenize(text)
	if len(tokens) > maxLen-2 {
		tokens = tokens[:maxLen-2]
	}

	inputIDs := make([]int64, maxLen)
	attentionMask := make([]int64, maxLen)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1
	for i, id := range tokens {
		inputIDs[i+1] = id
		attentionMask[i+1] = 1
	}
	inputIDs[len(tokens)+1] = tokenSEP
	attentionMask[len(tokens)+1] = 1

	return inputIDs, attentionMask
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}

		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}

		for _, piece := range t.wordPieces(word) {
			if id, ok := t.vocab[piece]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, tokenUNK)
			}
		}
	}
	return tokens
}

// wordPieces splits a word into greedy longest-prefix subwords with the
// "##" continuation convention.
func (t *wordPieceTokenizer) wordPieces(word string) []string {
	var pieces []string
	start := 0

	for start < len(word) {
		end := len(word)
		matched := false

		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := t.vocab[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				matched = true
				break
			}
			end--
		}

		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}

	return pieces
}
