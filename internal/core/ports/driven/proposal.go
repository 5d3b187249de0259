package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ProposalRenderer emits a client-facing document
type ProposalRenderer interface {
	// Render produces the document bytes for the proposal
	Render(ctx context.Context, proposal *domain.Proposal) ([]byte, error)

	// Format returns the format this renderer produces
	Format() domain.ProposalFormat
}
