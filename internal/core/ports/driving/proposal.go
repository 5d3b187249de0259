package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// ProposalRequest carries what the document emitter needs
type ProposalRequest struct {
	ClientName     string                `json:"client_name" validate:"max=200"`
	ClientRequest  string                `json:"client_request" validate:"required"`
	Recommendation string                `json:"recommendation" validate:"required"`
	Price          float64               `json:"price" validate:"gte=0"`
	Language       domain.Language       `json:"language"`
	Format         domain.ProposalFormat `json:"format" validate:"omitempty,oneof=pdf html"`
}

// ProposalService renders recommendations into client documents
type ProposalService interface {
	Render(ctx context.Context, req ProposalRequest) (*domain.RenderedProposal, error)
}
