package driving

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// CatalogService manages the venue catalog and the semantic index built from it
type CatalogService interface {
	// Refresh fetches the catalog, rebuilds the index and swaps it in
	Refresh(ctx context.Context) (*domain.IndexStatus, error)

	// Status returns the currently served index status
	Status() *domain.IndexStatus

	// Documents returns the Documents of the served index in catalog order
	Documents() []*domain.Document
}
