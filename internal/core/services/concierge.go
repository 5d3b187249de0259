package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/runtime"
)

// Ensure conciergeService implements RecommendationService
var _ driving.RecommendationService = (*conciergeService)(nil)

// ConciergeConfig holds configuration for the concierge pipeline
type ConciergeConfig struct {
	// Timeout bounds one whole request including every external call
	Timeout time.Duration

	// DefaultLanguage is used when no detector is configured
	DefaultLanguage domain.Language

	Logger *slog.Logger
}

// conciergeService runs detect, translate, recommend and back-translate
type conciergeService struct {
	engine   *Engine
	detector driven.LanguageDetector
	services *runtime.Services
	config   ConciergeConfig
	logger   *slog.Logger
}

// NewConciergeService creates the recommendation pipeline.
// The translator is read from services on every call; detector may be nil.
func NewConciergeService(
	engine *Engine,
	detector driven.LanguageDetector,
	services *runtime.Services,
	cfg ConciergeConfig,
) driving.RecommendationService {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = domain.DefaultLanguage
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &conciergeService{
		engine:   engine,
		detector: detector,
		services: services,
		config:   cfg,
		logger:   logger,
	}
}

// Recommend answers a client request in the request's own language
func (s *conciergeService) Recommend(ctx context.Context, req driving.RecommendRequest) (*domain.Recommendation, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: request text is required", domain.ErrInvalidInput)
	}
	if req.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must not be negative", domain.ErrInvalidInput)
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	query := domain.Query{
		Original: text,
		Language: s.detect(text),
		English:  text,
	}

	if query.Translated() {
		english, err := s.translate(ctx, text, query.Language, domain.LanguageEnglish)
		if err != nil {
			return nil, err
		}
		query.English = english
	}

	result, err := s.engine.Recommend(ctx, query.English, req.TopK)
	if err != nil {
		return nil, err
	}

	answer := result.Answer
	if query.Translated() {
		answer, err = s.translate(ctx, result.Answer, domain.LanguageEnglish, query.Language)
		if err != nil {
			return nil, err
		}
	}

	rec := &domain.Recommendation{
		ID:            uuid.NewString(),
		Query:         query,
		Answer:        answer,
		AnswerEnglish: result.Answer,
		Sources:       result.Sources,
		Disclosures:   result.Disclosures,
		Model:         result.Model,
		CreatedAt:     time.Now(),
		Took:          time.Since(start),
	}

	s.logger.Info("recommendation completed",
		"id", rec.ID,
		"language", query.Language,
		"sources", len(rec.Sources),
		"disclosures", len(rec.Disclosures),
		"took", rec.Took)

	return rec, nil
}

func (s *conciergeService) detect(text string) domain.Language {
	if s.detector == nil {
		return s.config.DefaultLanguage
	}
	return s.detector.Detect(text)
}

// translate surfaces every failure; an empty result counts as one
func (s *conciergeService) translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	translator := s.services.Translator()
	if translator == nil {
		return "", fmt.Errorf("%w: no translator configured for %s", domain.ErrTranslationService, source)
	}

	out, err := translator.Translate(ctx, text, source, target)
	if err != nil {
		if errors.Is(err, domain.ErrTranslationService) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrTranslationService, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: empty translation from %s to %s", domain.ErrTranslationService, source, target)
	}
	return out, nil
}
