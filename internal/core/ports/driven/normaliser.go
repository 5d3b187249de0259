package driven

import "github.com/custodia-labs/concierge/internal/core/domain"

// RecordNormaliser turns catalog records into embeddable Documents.
type RecordNormaliser interface {
	// Normalise converts every record or fails on the first invalid one.
	// Output has the same length and order as the input.
	Normalise(records []domain.CatalogRecord) ([]*domain.Document, error)

	// NormaliseLenient skips invalid records and reports why each was skipped
	NormaliseLenient(records []domain.CatalogRecord) ([]*domain.Document, []error)
}
