package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
)

func docs(texts ...string) []*domain.Document {
	out := make([]*domain.Document, len(texts))
	for i, text := range texts {
		out[i] = &domain.Document{ID: fmt.Sprintf("d%d", i), Position: i, Text: text}
	}
	return out
}

func TestBuild_EmptyMakesNoEmbeddingCall(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()

	idx, err := Build(context.Background(), embedder, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, embedder.EmbedCalls)

	results, err := idx.Query(context.Background(), "anything", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.QueryCalls)
}

func TestBuild_Batches(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	texts := make([]string, 7)
	for i := range texts {
		texts[i] = fmt.Sprintf("venue %d", i)
	}

	idx, err := Build(context.Background(), embedder, docs(texts...), Options{BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 7, idx.Len())
	assert.Equal(t, 3, embedder.EmbedCalls)
	assert.Equal(t, 8, idx.Dimensions())
	assert.Equal(t, "mock-embedding-model", idx.Model())
	assert.False(t, idx.BuiltAt().IsZero())
}

func TestBuild_FailureIsAtomic(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetFailAlways(true)

	idx, err := Build(context.Background(), embedder, docs("a", "b"), Options{})
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestBuild_NilEmbedder(t *testing.T) {
	idx, err := Build(context.Background(), nil, docs("a"), Options{})
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestBuild_InconsistentDimensions(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.Vectors["a"] = []float32{1, 0}
	embedder.Vectors["b"] = []float32{1, 0, 0}

	idx, err := Build(context.Background(), embedder, docs("a", "b"), Options{})
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestQuery_OrderAndLimit(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetDimensions(2)
	embedder.Vectors["north"] = []float32{0, 1}
	embedder.Vectors["east"] = []float32{1, 0}
	embedder.Vectors["north-east"] = []float32{1, 1}
	embedder.Vectors["q"] = []float32{0.1, 1}

	idx, err := Build(context.Background(), embedder, docs("east", "north-east", "north"), Options{})
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "north", results[0].Document.Text)
	assert.Equal(t, "north-east", results[1].Document.Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestQuery_KLargerThanIndexReturnsAll(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	idx, err := Build(context.Background(), embedder, docs("a", "b", "c"), Options{})
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "query", 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestQuery_DefaultK(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	idx, err := Build(context.Background(), embedder, docs("a", "b", "c", "d", "e", "f"), Options{})
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "query", 0)
	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultTopK)
}

func TestQuery_TiesKeepCatalogOrder(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetDimensions(2)
	for _, text := range []string{"first", "second", "third", "q"} {
		embedder.Vectors[text] = []float32{1, 1}
	}

	idx, err := Build(context.Background(), embedder, docs("first", "second", "third"), Options{})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		results, err := idx.Query(context.Background(), "q", 3)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2}, []int{
			results[0].Document.Position,
			results[1].Document.Position,
			results[2].Document.Position,
		})
	}
}

func TestQuery_ZeroVectorScoresZero(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetDimensions(2)
	embedder.Vectors["zero"] = []float32{0, 0}
	embedder.Vectors["one"] = []float32{1, 0}
	embedder.Vectors["q"] = []float32{1, 0}

	idx, err := Build(context.Background(), embedder, docs("zero", "one"), Options{})
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, "one", results[0].Document.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestQuery_EmbeddingFailure(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	idx, err := Build(context.Background(), embedder, docs("a"), Options{})
	require.NoError(t, err)

	embedder.SetFailNext(true)
	_, err = idx.Query(context.Background(), "q", 1)
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	idx, err := Build(context.Background(), embedder, docs("a"), Options{})
	require.NoError(t, err)

	embedder.Vectors["short"] = []float32{1}
	_, err = idx.Query(context.Background(), "short", 1)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingService))
}

func TestDocuments_CatalogOrder(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	idx, err := Build(context.Background(), embedder, docs("a", "b", "c"), Options{BatchSize: 2})
	require.NoError(t, err)

	got := idx.Documents()
	require.Len(t, got, 3)
	for i, d := range got {
		assert.Equal(t, i, d.Position)
	}
}

func TestBuilder_ReturnsNilInterfaceOnFailure(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetFailAlways(true)

	idx, err := Builder{}.Build(context.Background(), embedder, docs("a"))
	require.Error(t, err)
	assert.Nil(t, idx)
}
