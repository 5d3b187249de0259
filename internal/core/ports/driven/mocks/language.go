package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var (
	_ driven.LanguageDetector = (*MockLanguageDetector)(nil)
	_ driven.Translator       = (*MockTranslator)(nil)
)

// MockLanguageDetector returns a fixed language, or the one mapped for an exact text
type MockLanguageDetector struct {
	Language domain.Language
	ByText   map[string]domain.Language
}

// NewMockLanguageDetector creates a detector that always answers lang
func NewMockLanguageDetector(lang domain.Language) *MockLanguageDetector {
	return &MockLanguageDetector{Language: lang, ByText: make(map[string]domain.Language)}
}

func (m *MockLanguageDetector) Detect(text string) domain.Language {
	if lang, ok := m.ByText[text]; ok {
		return lang
	}
	if m.Language == "" {
		return domain.DefaultLanguage
	}
	return m.Language
}

// TranslateCall records one Translate invocation
type TranslateCall struct {
	Text   string
	Source domain.Language
	Target domain.Language
}

// MockTranslator records calls and answers from a phrase table.
// Unknown texts are returned tagged with the target language.
type MockTranslator struct {
	mu sync.Mutex

	Phrases     map[string]string
	Err         error
	TranslateFn func(text string, source, target domain.Language) (string, error)
	Calls       []TranslateCall
}

// NewMockTranslator creates a new MockTranslator
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{Phrases: make(map[string]string)}
}

func (m *MockTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, TranslateCall{Text: text, Source: source, Target: target})
	fn, err := m.TranslateFn, m.Err
	out, ok := m.Phrases[text]
	m.mu.Unlock()

	if fn != nil {
		return fn(text, source, target)
	}
	if err != nil {
		return "", err
	}
	if ok {
		return out, nil
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

// CallCount returns the number of Translate invocations
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
