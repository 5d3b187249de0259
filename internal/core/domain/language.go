package domain

import "strings"

// Language is an ISO 639-1 language code
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageFrench     Language = "fr"
	LanguageGerman     Language = "de"
	LanguageSpanish    Language = "es"
	LanguageItalian    Language = "it"
	LanguagePortuguese Language = "pt"
	LanguageDutch      Language = "nl"
)

// DefaultLanguage is used when detection is inconclusive
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists the languages the detector may return
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageFrench,
	LanguageGerman,
	LanguageSpanish,
	LanguageItalian,
	LanguagePortuguese,
	LanguageDutch,
}

// ParseLanguage normalises a code such as "FR" or "fr-FR".
// Unknown codes return false.
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexAny(code, "-_"); idx != -1 {
		code = code[:idx]
	}
	for _, l := range SupportedLanguages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}

// IsEnglish returns true for the pivot language used by retrieval and generation
func (l Language) IsEnglish() bool {
	return l == LanguageEnglish
}

// String implements fmt.Stringer
func (l Language) String() string {
	return string(l)
}
