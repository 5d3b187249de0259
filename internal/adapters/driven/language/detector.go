// Package language detects the language of client requests.
package language

import (
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Detector implements LanguageDetector
var _ driven.LanguageDetector = (*Detector)(nil)

// DefaultMinRunes is the shortest text classified at all
const DefaultMinRunes = 12

// supported maps detector languages onto the pipeline's language set
var supported = map[whatlanggo.Lang]domain.Language{
	whatlanggo.Eng: domain.LanguageEnglish,
	whatlanggo.Fra: domain.LanguageFrench,
	whatlanggo.Deu: domain.LanguageGerman,
	whatlanggo.Spa: domain.LanguageSpanish,
	whatlanggo.Ita: domain.LanguageItalian,
	whatlanggo.Por: domain.LanguagePortuguese,
	whatlanggo.Nld: domain.LanguageDutch,
}

// Config holds detector settings
type Config struct {
	// Fallback is returned for short, ambiguous or unsupported text
	Fallback domain.Language
	MinRunes int
}

// Detector classifies text with whatlanggo restricted to supported languages
type Detector struct {
	options  whatlanggo.Options
	fallback domain.Language
	minRunes int
}

// NewDetector creates a new language detector
func NewDetector(cfg Config) *Detector {
	if cfg.Fallback == "" {
		cfg.Fallback = domain.DefaultLanguage
	}
	if cfg.MinRunes <= 0 {
		cfg.MinRunes = DefaultMinRunes
	}

	whitelist := make(map[whatlanggo.Lang]bool, len(supported))
	for lang := range supported {
		whitelist[lang] = true
	}

	return &Detector{
		options:  whatlanggo.Options{Whitelist: whitelist},
		fallback: cfg.Fallback,
		minRunes: cfg.MinRunes,
	}
}

// Detect returns the language of text, or the fallback when detection is
// inconclusive. It never fails.
func (d *Detector) Detect(text string) domain.Language {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < d.minRunes {
		return d.fallback
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	if !info.IsReliable() {
		return d.fallback
	}
	if lang, ok := supported[info.Lang]; ok {
		return lang
	}
	return d.fallback
}
