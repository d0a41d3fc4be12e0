// Package embedding turns query text into fixed-length vectors.
package embedding

import (
	"context"
	"time"
)

// Embedder generates a dense embedding for one text.
// Implementations return an error on any transport or provider failure;
// the pipeline absorbs those into its empty-result path.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the vector length this embedder produces.
	Dimension() int
}

// Config configures an embedding backend.
type Config struct {
	// Provider is "openai" or "huggingface".
	Provider string

	// Model is the embedding model identifier.
	Model string

	// Dimension is the expected vector length.
	Dimension int

	// APIKey authenticates against the provider.
	APIKey string

	// BaseURL overrides the provider endpoint (optional).
	BaseURL string

	// Timeout bounds one embedding call.
	Timeout time.Duration
}

// New creates an embedder from config.
func New(cfg Config) Embedder {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Provider == "huggingface" {
		return NewHuggingFace(cfg)
	}
	return NewOpenAI(cfg)
}
