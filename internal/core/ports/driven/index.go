package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// SemanticIndex answers top-k similarity queries over Documents.
// An instance is read-only once built; rebuilds produce a new instance.
type SemanticIndex interface {
	// Query returns at most min(k, Len()) documents, most similar first
	Query(ctx context.Context, text string, k int) ([]*domain.RankedDocument, error)

	// Len returns the number of indexed documents
	Len() int

	// Documents returns the indexed documents in catalog order
	Documents() []*domain.Document

	// Model returns the embedding model used to build the index
	Model() string

	// BuiltAt returns when the index was built
	BuiltAt() time.Time
}

// IndexBuilder builds a new SemanticIndex with one embedding service.
// A failed build returns no index.
type IndexBuilder interface {
	Build(ctx context.Context, embedder EmbeddingService, docs []*domain.Document) (SemanticIndex, error)
}
