package mocks

import (
	"context"
	"fmt"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var _ driven.ProposalRenderer = (*MockProposalRenderer)(nil)

// MockProposalRenderer renders a plain text summary of the proposal
type MockProposalRenderer struct {
	format domain.ProposalFormat
	Err    error
	Last   *domain.Proposal
}

// NewMockProposalRenderer creates a renderer for format
func NewMockProposalRenderer(format domain.ProposalFormat) *MockProposalRenderer {
	return &MockProposalRenderer{format: format}
}

func (m *MockProposalRenderer) Render(ctx context.Context, p *domain.Proposal) ([]byte, error) {
	m.Last = p
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte(fmt.Sprintf("%s|%s|%s|%.2f", p.Number, p.ClientName, p.Recommendation, p.Price)), nil
}

func (m *MockProposalRenderer) Format() domain.ProposalFormat {
	return m.format
}
