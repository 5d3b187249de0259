package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// LLMService provides single-shot text generation
type LLMService interface {
	// Generate runs one completion for the system instruction and prompt.
	// No conversation state is kept between calls.
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
