package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// CatalogSource provides the ordered venue records.
// Implementations wrap failures with domain.ErrCatalogFetch and never retry.
type CatalogSource interface {
	// Fetch returns all records in catalog order
	Fetch(ctx context.Context) ([]domain.CatalogRecord, error)

	// Name identifies the source for logs and status
	Name() string
}
