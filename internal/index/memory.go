// Package index holds the in-memory semantic index over venue Documents.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/viterin/vek/vek32"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SemanticIndex = (*Index)(nil)

const (
	// DefaultBatchSize is the number of documents embedded per call
	DefaultBatchSize = 100
)

// Options configures an index build
type Options struct {
	BatchSize int
	Logger    *slog.Logger
}

type entry struct {
	doc    *domain.Document
	vector []float32
	norm   float32
}

// Index is an immutable set of (Document, vector) pairs.
// It is safe for concurrent queries; rebuilding produces a new Index.
type Index struct {
	embedder   driven.EmbeddingService
	entries    []entry
	dimensions int
	builtAt    time.Time
}

// Build embeds every document with embedder and returns the finished index.
// Any embedding failure fails the whole build and no index is returned.
func Build(ctx context.Context, embedder driven.EmbeddingService, docs []*domain.Document, opts Options) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingService)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	idx := &Index{
		embedder: embedder,
		entries:  make([]entry, 0, len(docs)),
	}

	for start := 0; start < len(docs); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = doc.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, wrapEmbedding(err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
				domain.ErrEmbeddingService, len(batch), len(vectors))
		}

		for i, vec := range vectors {
			if err := idx.checkDimensions(vec); err != nil {
				return nil, err
			}
			idx.entries = append(idx.entries, entry{
				doc:    batch[i],
				vector: vec,
				norm:   vek32.Norm(vec),
			})
		}

		logger.Debug("embedded document batch", "from", start, "to", end, "total", len(docs))
	}

	idx.builtAt = time.Now()
	return idx, nil
}

func (idx *Index) checkDimensions(vec []float32) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty embedding returned", domain.ErrEmbeddingService)
	}
	if idx.dimensions == 0 {
		idx.dimensions = len(vec)
		return nil
	}
	if len(vec) != idx.dimensions {
		return fmt.Errorf("%w: embedding dimension %d does not match %d",
			domain.ErrEmbeddingService, len(vec), idx.dimensions)
	}
	return nil
}

// Query embeds text and returns at most min(k, Len()) documents ordered by
// descending cosine similarity. Equal scores keep catalog order.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]*domain.RankedDocument, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	if len(idx.entries) == 0 {
		return []*domain.RankedDocument{}, nil
	}

	qvec, err := idx.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, wrapEmbedding(err)
	}
	if len(qvec) != idx.dimensions {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			domain.ErrEmbeddingService, len(qvec), idx.dimensions)
	}
	qnorm := vek32.Norm(qvec)

	ranked := make([]*domain.RankedDocument, len(idx.entries))
	for i, e := range idx.entries {
		ranked[i] = &domain.RankedDocument{
			Document: e.doc,
			Score:    cosine(qvec, qnorm, e.vector, e.norm),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Document.Position < ranked[j].Document.Position
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// cosine returns 0 when either vector has zero length
func cosine(a []float32, anorm float32, b []float32, bnorm float32) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	return float64(vek32.Dot(a, b)) / (float64(anorm) * float64(bnorm))
}

// Len returns the number of indexed documents
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Model returns the embedding model the index was built with
func (idx *Index) Model() string {
	return idx.embedder.Model()
}

// BuiltAt returns the build completion time
func (idx *Index) BuiltAt() time.Time {
	return idx.builtAt
}

// Dimensions returns the vector size, 0 for an empty index
func (idx *Index) Dimensions() int {
	return idx.dimensions
}

// Documents returns the indexed documents in catalog order
func (idx *Index) Documents() []*domain.Document {
	docs := make([]*domain.Document, len(idx.entries))
	for i, e := range idx.entries {
		docs[i] = e.doc
	}
	return docs
}

func wrapEmbedding(err error) error {
	if errors.Is(err, domain.ErrEmbeddingService) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
}

// Verify interface compliance
var _ driven.IndexBuilder = Builder{}

// Builder builds in-memory indexes with fixed options
type Builder struct {
	Options Options
}

// Build implements driven.IndexBuilder
func (b Builder) Build(ctx context.Context, embedder driven.EmbeddingService, docs []*domain.Document) (driven.SemanticIndex, error) {
	idx, err := Build(ctx, embedder, docs, b.Options)
	if err != nil {
		return nil, err
	}
	return idx, nil
}
