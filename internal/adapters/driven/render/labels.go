// Package render emits client-facing proposal documents.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// labels holds the fixed wording of a proposal in one language
type labels struct {
	Title          string
	PreparedFor    string
	Date           string
	Number         string
	Request        string
	Recommendation string
	Price          string
	Closing        string
	Signature      string
	dateLayout     string
	decimalComma   bool
}

var labelsByLanguage = map[domain.Language]labels{
	domain.LanguageEnglish: {
		Title:          "Restaurant Proposal",
		PreparedFor:    "Prepared for",
		Date:           "Date",
		Number:         "Proposal No.",
		Request:        "Your request",
		Recommendation: "Our recommendation",
		Price:          "Service fee",
		Closing:        "We remain at your disposal to confirm your reservation.",
		Signature:      "Your Concierge",
		dateLayout:     "January 2, 2006",
	},
	domain.LanguageFrench: {
		Title:          "Proposition de restaurant",
		PreparedFor:    "Préparée pour",
		Date:           "Date",
		Number:         "Proposition n°",
		Request:        "Votre demande",
		Recommendation: "Notre recommandation",
		Price:          "Frais de service",
		Closing:        "Nous restons à votre disposition pour confirmer votre réservation.",
		Signature:      "Votre Concierge",
		dateLayout:     "02/01/2006",
		decimalComma:   true,
	},
}

// labelsFor falls back to English for languages without a translation
func labelsFor(lang domain.Language) labels {
	if l, ok := labelsByLanguage[lang]; ok {
		return l
	}
	return labelsByLanguage[domain.LanguageEnglish]
}

func (l labels) formatDate(t time.Time) string {
	return t.Format(l.dateLayout)
}

func (l labels) formatPrice(amount float64, currency string) string {
	s := fmt.Sprintf("%.2f", amount)
	if l.decimalComma {
		s = strings.Replace(s, ".", ",", 1)
	}
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// paragraphs splits text on blank lines and drops empty blocks
func paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range strings.Split(text, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}
