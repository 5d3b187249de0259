package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

func newTestProposalService() (driving.ProposalService, *mocks.MockProposalRenderer, *mocks.MockProposalRenderer) {
	pdf := mocks.NewMockProposalRenderer(domain.ProposalFormatPDF)
	html := mocks.NewMockProposalRenderer(domain.ProposalFormatHTML)
	cfg := DefaultProposalConfig()
	cfg.Now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return NewProposalService(cfg, pdf, html), pdf, html
}

func TestProposalService_Defaults(t *testing.T) {
	svc, pdf, _ := newTestProposalService()

	out, err := svc.Render(context.Background(), driving.ProposalRequest{
		ClientRequest:  "French dinner for 6",
		Recommendation: "Le Jardin",
	})
	require.NoError(t, err)

	assert.Equal(t, "proposal.pdf", out.FileName)
	assert.Equal(t, "application/pdf", out.ContentType)
	require.NotNil(t, pdf.Last)
	assert.Equal(t, "Client", pdf.Last.ClientName)
	assert.Equal(t, 70.0, pdf.Last.Price)
	assert.Equal(t, "EUR", pdf.Last.Currency)
	assert.Equal(t, domain.LanguageEnglish, pdf.Last.Language)
	assert.True(t, strings.HasPrefix(pdf.Last.Number, "P-20250314-"))
	assert.Contains(t, string(out.Body), "Le Jardin")
}

func TestProposalService_FrenchHTML(t *testing.T) {
	svc, _, html := newTestProposalService()

	out, err := svc.Render(context.Background(), driving.ProposalRequest{
		ClientName:     "Mme Dupont",
		ClientRequest:  "Dîner pour 6",
		Recommendation: "Le Jardin",
		Price:          120,
		Language:       "fr-FR",
		Format:         domain.ProposalFormatHTML,
	})
	require.NoError(t, err)

	assert.Equal(t, "proposition.html", out.FileName)
	assert.Equal(t, "text/html; charset=utf-8", out.ContentType)
	assert.Equal(t, "Mme Dupont", html.Last.ClientName)
	assert.Equal(t, 120.0, html.Last.Price)
	assert.Equal(t, domain.LanguageFrench, html.Last.Language)
}

func TestProposalService_InvalidInput(t *testing.T) {
	svc, _, _ := newTestProposalService()

	tests := []struct {
		name string
		req  driving.ProposalRequest
	}{
		{"missing recommendation", driving.ProposalRequest{ClientRequest: "x"}},
		{"missing request", driving.ProposalRequest{Recommendation: "x"}},
		{"negative price", driving.ProposalRequest{ClientRequest: "x", Recommendation: "y", Price: -1}},
		{"unknown format", driving.ProposalRequest{ClientRequest: "x", Recommendation: "y", Format: "docx"}},
		{"unknown language", driving.ProposalRequest{ClientRequest: "x", Recommendation: "y", Language: "xx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Render(context.Background(), tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
