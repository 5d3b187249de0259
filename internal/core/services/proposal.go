package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ensure proposalService implements ProposalService
var _ driving.ProposalService = (*proposalService)(nil)

// ProposalConfig holds proposal defaults
type ProposalConfig struct {
	DefaultClientName string
	DefaultPrice      float64
	Currency          string
	DefaultLanguage   domain.Language

	// Now is overridable for tests
	Now func() time.Time
}

// DefaultProposalConfig returns the defaults used by the concierge desk
func DefaultProposalConfig() ProposalConfig {
	return ProposalConfig{
		DefaultClientName: "Client",
		DefaultPrice:      70,
		Currency:          "EUR",
		DefaultLanguage:   domain.DefaultLanguage,
	}
}

// proposalService renders recommendations with the renderer for the requested format
type proposalService struct {
	renderers map[domain.ProposalFormat]driven.ProposalRenderer
	config    ProposalConfig
}

// NewProposalService creates a new ProposalService
func NewProposalService(cfg ProposalConfig, renderers ...driven.ProposalRenderer) driving.ProposalService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = domain.DefaultLanguage
	}
	byFormat := make(map[domain.ProposalFormat]driven.ProposalRenderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &proposalService{renderers: byFormat, config: cfg}
}

// Render fills in defaults and emits the document
func (s *proposalService) Render(ctx context.Context, req driving.ProposalRequest) (*domain.RenderedProposal, error) {
	if strings.TrimSpace(req.ClientRequest) == "" || strings.TrimSpace(req.Recommendation) == "" {
		return nil, fmt.Errorf("%w: client request and recommendation are required", domain.ErrInvalidInput)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	format := req.Format
	if format == "" {
		format = domain.ProposalFormatPDF
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported proposal format %q", domain.ErrInvalidInput, format)
	}

	lang := s.config.DefaultLanguage
	if req.Language != "" {
		parsed, ok := domain.ParseLanguage(string(req.Language))
		if !ok {
			return nil, fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidInput, req.Language)
		}
		lang = parsed
	}

	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		clientName = s.config.DefaultClientName
	}
	price := req.Price
	if price == 0 {
		price = s.config.DefaultPrice
	}

	now := s.config.Now()
	proposal := &domain.Proposal{
		Number:         fmt.Sprintf("P-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8])),
		ClientName:     clientName,
		ClientRequest:  req.ClientRequest,
		Recommendation: req.Recommendation,
		Price:          price,
		Currency:       s.config.Currency,
		Date:           now,
		Language:       lang,
		Format:         format,
	}

	body, err := renderer.Render(ctx, proposal)
	if err != nil {
		return nil, fmt.Errorf("render %s proposal: %w", format, err)
	}

	return &domain.RenderedProposal{
		FileName:    proposal.FileName(),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
