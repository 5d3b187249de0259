package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService records generation requests and returns a canned response.
// GenerateFn takes precedence over Response when set.
type MockLLMService struct {
	mu sync.Mutex

	Response   string
	Err        error
	GenerateFn func(req domain.GenerationRequest) (string, error)
	Requests   []domain.GenerationRequest
	PingErr    error
}

// NewMockLLMService creates a new MockLLMService answering with response
func NewMockLLMService(response string) *MockLLMService {
	return &MockLLMService{Response: response}
}

func (m *MockLLMService) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	fn := m.GenerateFn
	resp, err := m.Response, m.Err
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockLLMService) Close() error {
	return nil
}

// Calls returns the number of Generate invocations
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LastRequest returns the most recent request, or the zero value
func (m *MockLLMService) LastRequest() domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return domain.GenerationRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}
