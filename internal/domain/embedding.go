package domain

import (
	"context"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// DefaultEmbeddingModel is the model used when the configuration does not name one.
const DefaultEmbeddingModel = "text-embedding-3-small"

// KeyPrefix namespaces every key written by the key-value drivers.
const KeyPrefix = "docsearch:"
