package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// LanguageDetector classifies free text.
// Detection is best-effort: inconclusive input yields the default language.
type LanguageDetector interface {
	Detect(text string) domain.Language
}

// Translator converts text between languages.
// Failures are wrapped with domain.ErrTranslationService and never retried.
type Translator interface {
	Translate(ctx context.Context, text string, source, target domain.Language) (string, error)
}
