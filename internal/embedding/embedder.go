// Package embedding turns text into fixed-length vectors with a sentence-embedding model.
package embedding

import (
	"context"
	"errors"
)

// ErrModelNotFound is returned by Load when the backend does not serve the configured model.
var ErrModelNotFound = errors.New("embedding model not found")

// Embedder is a sentence-embedding backend.
type Embedder interface {
	// Name identifies the backend and model, e.g. "ollama/all-minilm".
	Name() string
	// Load prepares the model for inference. It is called once per process.
	Load(ctx context.Context) error
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
