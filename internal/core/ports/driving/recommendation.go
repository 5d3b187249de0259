package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// RecommendRequest is a client request submitted by an agent
type RecommendRequest struct {
	Text string `json:"request" validate:"required,max=8000"`
	TopK int    `json:"top_k,omitempty" validate:"gte=0,lte=50"`
}

// RecommendationService runs the full detect, translate, retrieve, generate,
// back-translate pipeline for one request.
type RecommendationService interface {
	Recommend(ctx context.Context, req RecommendRequest) (*domain.Recommendation, error)
}
