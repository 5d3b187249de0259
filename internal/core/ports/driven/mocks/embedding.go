package mocks

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*MockEmbeddingService)(nil)

// MockEmbeddingService is a mock implementation of EmbeddingService for testing.
// Vectors are derived from a hash of the text unless Vectors holds an override.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	model      string
	failNext   bool
	failAlways bool

	// Vectors overrides the generated vector for an exact text
	Vectors map[string][]float32

	EmbedCalls int
	QueryCalls int
	Texts      []string
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 8,
		model:      "mock-embedding-model",
		Vectors:    make(map[string][]float32),
	}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EmbedCalls++
	if err := m.failure(); err != nil {
		return nil, err
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		m.Texts = append(m.Texts, text)
		result[i] = m.vector(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.QueryCalls++
	if err := m.failure(); err != nil {
		return nil, err
	}
	return m.vector(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

func (m *MockEmbeddingService) failure() error {
	if m.failAlways {
		return fmt.Errorf("%w: mock failure", domain.ErrEmbeddingService)
	}
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("%w: mock failure", domain.ErrEmbeddingService)
	}
	return nil
}

func (m *MockEmbeddingService) vector(text string) []float32 {
	if v, ok := m.Vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}

	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000) / 1000.0
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbeddingService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockEmbeddingService) SetFailAlways(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlways = fail
}

func (m *MockEmbeddingService) SetDimensions(dim int) {
	m.dimensions = dim
}

func (m *MockEmbeddingService) SetModel(model string) {
	m.model = model
}
