package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure LLMTranslator implements Translator
var _ driven.Translator = (*LLMTranslator)(nil)

const translationInstruction = "You are a professional translator for a luxury concierge service. " +
	"Translate the user's text faithfully, preserving venue names, addresses and numbers. " +
	"Reply with the translation only, without quotes or commentary."

var languageNames = map[domain.Language]string{
	domain.LanguageEnglish:    "English",
	domain.LanguageFrench:     "French",
	domain.LanguageGerman:     "German",
	domain.LanguageSpanish:    "Spanish",
	domain.LanguageItalian:    "Italian",
	domain.LanguagePortuguese: "Portuguese",
	domain.LanguageDutch:      "Dutch",
}

func languageName(l domain.Language) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}

// LLMTranslator translates by prompting a generative model at temperature 0
type LLMTranslator struct {
	llm       driven.LLMService
	maxTokens int
}

// NewLLMTranslator wraps llm as a Translator
func NewLLMTranslator(llm driven.LLMService) *LLMTranslator {
	return &LLMTranslator{llm: llm, maxTokens: 1024}
}

// Translate converts text from source to target
func (t *LLMTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	if source == target || strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf("Translate the following text from %s to %s.\n\n%s",
		languageName(source), languageName(target), text)

	out, err := t.llm.Generate(ctx, domain.GenerationRequest{
		System:      translationInstruction,
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   t.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTranslationService, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: empty translation returned", domain.ErrTranslationService)
	}
	return out, nil
}
