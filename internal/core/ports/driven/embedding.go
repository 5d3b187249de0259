package driven

import (
	"context"
)

// EmbeddingService generates text embeddings.
// One instance must be used for a whole index so distances stay comparable.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a retrieval query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size (0 if unknown until first call)
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}

// EmbeddingCache stores vectors keyed by model and text
type EmbeddingCache interface {
	// GetMany returns cached vectors aligned with texts; misses are nil
	GetMany(ctx context.Context, model string, texts []string) ([][]float32, error)

	// SetMany stores vectors for texts
	SetMany(ctx context.Context, model string, texts []string, vectors [][]float32) error
}
