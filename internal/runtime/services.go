package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Services holds references to the swappable parts of the pipeline.
// The semantic index is replaced wholesale on every catalog refresh;
// readers keep whatever instance they fetched until their request ends.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
	translator       driven.Translator
	index            driven.SemanticIndex
	status           *domain.IndexStatus
}

// NewServices creates a new Services registry
func NewServices() *Services {
	return &Services{
		status: &domain.IndexStatus{},
	}
}

// Capabilities reports which services are currently wired
type Capabilities struct {
	Embedding   bool `json:"embedding"`
	LLM         bool `json:"llm"`
	Translation bool `json:"translation"`
	Index       bool `json:"index"`
}

// Capabilities returns a snapshot of the wired services
func (s *Services) Capabilities() Capabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Capabilities{
		Embedding:   s.embeddingService != nil,
		LLM:         s.llmService != nil,
		Translation: s.translator != nil,
		Index:       s.index != nil,
	}
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// Translator returns the current translator (may be nil)
func (s *Services) Translator() driven.Translator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translator
}

// Index returns the served semantic index (nil until the first build)
func (s *Services) Index() driven.SemanticIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// IndexStatus returns a copy of the served index status
func (s *Services) IndexStatus() *domain.IndexStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := *s.status
	return &status
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Call it before the next catalog
// refresh, since the served index still embeds queries with its own service.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}
	s.embeddingService = svc
}

// SetLLMService updates the LLM service.
// Closes the old service if present.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil && s.llmService != svc {
		_ = s.llmService.Close()
	}
	s.llmService = svc
}

// SetTranslator updates the translator
func (s *Services) SetTranslator(t driven.Translator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translator = t
}

// SetIndex swaps in a freshly built index together with its status.
// In-flight queries holding the previous index are unaffected.
func (s *Services) SetIndex(idx driven.SemanticIndex, status *domain.IndexStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = idx
	if status == nil {
		status = &domain.IndexStatus{}
	}
	copied := *status
	copied.Ready = idx != nil
	s.status = &copied
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}
	s.translator = nil
	s.index = nil
	s.status = &domain.IndexStatus{}

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM validates connectivity before setting LLM service
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}
