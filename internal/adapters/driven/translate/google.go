// Package translate provides Translator implementations.
package translate

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translatev2 "google.golang.org/api/translate/v2"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure GoogleTranslator implements Translator
var _ driven.Translator = (*GoogleTranslator)(nil)

// GoogleConfig holds settings for the Cloud Translation v2 backend
type GoogleConfig struct {
	APIKey string
	// Endpoint overrides the API base URL
	Endpoint  string
	RateLimit RateLimitConfig
	Logger    *slog.Logger
}

// GoogleTranslator translates with the Cloud Translation Basic (v2) API
type GoogleTranslator struct {
	service *translatev2.Service
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewGoogleTranslator creates a Cloud Translation client
func NewGoogleTranslator(ctx context.Context, cfg GoogleConfig) (*GoogleTranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google translate API key is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := translatev2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}

	return &GoogleTranslator{
		service: service,
		limiter: NewRateLimiter(cfg.RateLimit),
		logger:  logger,
	}, nil
}

// Translate converts text from source to target. Identical languages and
// blank text are returned unchanged without calling the API.
func (t *GoogleTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	if source == target || strings.TrimSpace(text) == "" {
		return text, nil
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslationService, err)
	}

	call := t.service.Translations.List([]string{text}, string(target)).
		Format("text").
		Context(ctx)
	if source != "" {
		call = call.Source(string(source))
	}

	resp, err := call.Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			if apiErr.Code == http.StatusTooManyRequests {
				t.limiter.Backoff(retryAfter(apiErr.Header))
				t.logger.Warn("translation rate limited", "source", source, "target", target)
			}
			return "", fmt.Errorf("%w: google translate error %d: %s", domain.ErrTranslationService, apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %w", domain.ErrTranslationService, err)
	}

	if len(resp.Translations) == 0 {
		return "", fmt.Errorf("%w: no translation returned", domain.ErrTranslationService)
	}
	translated := strings.TrimSpace(html.UnescapeString(resp.Translations[0].TranslatedText))
	if translated == "" {
		return "", fmt.Errorf("%w: empty translation returned", domain.ErrTranslationService)
	}

	return translated, nil
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
