package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/runtime"
)

// EngineConfig holds configuration for the recommendation engine
type EngineConfig struct {
	// TopK is the number of documents retrieved per request
	TopK int

	// Temperature is sent on every generation call
	Temperature float32

	// MaxTokens caps the answer length, 0 leaves it to the provider
	MaxTokens int

	// City is the catalog's city; requests naming it match every venue
	City string

	// DisableLocationCheck returns the model text without appended disclosures
	DisableLocationCheck bool

	Logger *slog.Logger
}

// DefaultEngineConfig returns sensible defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		TopK:        domain.DefaultTopK,
		Temperature: 0,
		City:        "Paris",
	}
}

// Engine retrieves matching venues and asks the generative model for one
// answer grounded in them. It keeps no state between calls.
type Engine struct {
	services *runtime.Services
	config   EngineConfig
	check    locationCheck
	logger   *slog.Logger
}

// NewEngine creates a recommendation engine reading the index and
// model from services on every call.
func NewEngine(services *runtime.Services, cfg EngineConfig) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		services: services,
		config:   cfg,
		check:    locationCheck{city: cfg.City},
		logger:   logger,
	}
}

// Recommend answers an English request. topK <= 0 uses the configured value.
func (e *Engine) Recommend(ctx context.Context, request string, topK int) (*domain.EngineResult, error) {
	if topK <= 0 {
		topK = e.config.TopK
	}

	idx := e.services.Index()
	if idx == nil {
		return nil, domain.ErrIndexNotReady
	}
	llm := e.services.LLMService()
	if llm == nil {
		return nil, fmt.Errorf("%w: no generation model configured", domain.ErrGenerationService)
	}

	start := time.Now()
	sources, err := idx.Query(ctx, request, topK)
	if err != nil {
		return nil, err
	}

	// Empty context still goes to the model, which answers "no match"
	answer, err := llm.Generate(ctx, domain.GenerationRequest{
		System:      systemInstruction,
		Prompt:      buildPrompt(request, sources),
		Temperature: e.config.Temperature,
		MaxTokens:   e.config.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerationService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}

	result := &domain.EngineResult{
		Answer:  answer,
		Sources: sources,
		Model:   llm.Model(),
	}

	if !e.config.DisableLocationCheck {
		result.Answer, result.Disclosures = e.check.Check(request, answer, sources)
		for _, d := range result.Disclosures {
			if d.Appended {
				e.logger.Info("appended location disclosure",
					"venue", d.Venue,
					"requested", d.RequestedLocation)
			}
		}
	}

	e.logger.Debug("generated recommendation",
		"sources", len(sources),
		"model", result.Model,
		"took", time.Since(start))

	return result, nil
}
