package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure CachedEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// CachedEmbedding serves repeated texts from an EmbeddingCache and only sends
// misses to the wrapped service. Cache failures are logged and bypassed.
type CachedEmbedding struct {
	inner  driven.EmbeddingService
	cache  driven.EmbeddingCache
	logger *slog.Logger
}

// NewCachedEmbedding wraps inner with cache
func NewCachedEmbedding(inner driven.EmbeddingService, cache driven.EmbeddingCache, logger *slog.Logger) *CachedEmbedding {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedEmbedding{inner: inner, cache: cache, logger: logger}
}

// Embed returns vectors for texts in input order
func (c *CachedEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	model := c.inner.Model()
	out, err := c.cache.GetMany(ctx, model, texts)
	if err != nil || len(out) != len(texts) {
		c.logger.Warn("embedding cache read failed", "model", model, "error", err)
		out = make([][]float32, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range out {
		if v == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrEmbeddingService, len(missTexts), len(fresh))
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
	}

	if err := c.cache.SetMany(ctx, model, missTexts, fresh); err != nil {
		c.logger.Warn("embedding cache write failed", "model", model, "error", err)
	}

	c.logger.Debug("embedded texts", "model", model, "cached", len(texts)-len(missTexts), "embedded", len(missTexts))
	return out, nil
}

// EmbedQuery embeds a single query through the cache
func (c *CachedEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *CachedEmbedding) Dimensions() int {
	return c.inner.Dimensions()
}

func (c *CachedEmbedding) Model() string {
	return c.inner.Model()
}

func (c *CachedEmbedding) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx)
}

func (c *CachedEmbedding) Close() error {
	return c.inner.Close()
}
