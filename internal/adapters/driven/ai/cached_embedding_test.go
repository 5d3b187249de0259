package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]float32{}}
}

func (m *memoryCache) GetMany(ctx context.Context, model string, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.entries[model+"|"+text]
	}
	return out, nil
}

func (m *memoryCache) SetMany(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	for i, text := range texts {
		m.entries[model+"|"+text] = vectors[i]
	}
	return nil
}

func TestCachedEmbedding_ServesHitsFromCache(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	cache := newMemoryCache()
	svc := NewCachedEmbedding(inner, cache, nil)
	ctx := context.Background()

	first, err := svc.Embed(ctx, []string{"Le Jardin", "Chez Marie"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 2, len(inner.Texts))

	second, err := svc.Embed(ctx, []string{"Chez Marie", "Le Jardin", "Septime"})
	require.NoError(t, err)
	assert.Equal(t, first[1], second[0])
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, []string{"Le Jardin", "Chez Marie", "Septime"}, inner.Texts)

	q, err := svc.EmbedQuery(ctx, "Septime")
	require.NoError(t, err)
	assert.Equal(t, second[2], q)
	assert.Equal(t, 2, inner.EmbedCalls)
}

func TestCachedEmbedding_CacheFailuresAreBypassed(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	svc := NewCachedEmbedding(inner, cache, nil)

	vectors, err := svc.Embed(context.Background(), []string{"Le Jardin"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Len(t, vectors[0], inner.Dimensions())
}

func TestCachedEmbedding_InnerFailure(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	inner.SetFailAlways(true)
	svc := NewCachedEmbedding(inner, newMemoryCache(), nil)

	_, err := svc.Embed(context.Background(), []string{"Le Jardin"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)

	vectors, err := svc.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestCachedEmbedding_Delegates(t *testing.T) {
	inner := mocks.NewMockEmbeddingService()
	svc := NewCachedEmbedding(inner, newMemoryCache(), nil)

	assert.Equal(t, inner.Model(), svc.Model())
	assert.Equal(t, inner.Dimensions(), svc.Dimensions())
	assert.NoError(t, svc.HealthCheck(context.Background()))
	assert.NoError(t, svc.Close())
}
