package services

import (
	"context"
	"testing"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/concierge/internal/index"
	"github.com/custodia-labs/concierge/internal/normalisers"
	"github.com/custodia-labs/concierge/internal/runtime"
)

// leJardin is the single-venue catalog used across pipeline tests
func leJardin() domain.CatalogRecord {
	return domain.CatalogRecord{ID: "rec1", Fields: map[string]any{
		domain.FieldName:    "Le Jardin",
		domain.FieldAddress: "12 Rue de Rivoli, 1st arr.",
		domain.FieldCuisine: "French",
	}}
}

// newTestServices returns runtime services with mock AI services and an
// index built from records.
func newTestServices(t *testing.T, llm *mocks.MockLLMService, records ...domain.CatalogRecord) (*runtime.Services, *mocks.MockEmbeddingService) {
	t.Helper()

	embedder := mocks.NewMockEmbeddingService()
	services := runtime.NewServices()
	services.SetEmbeddingService(embedder)
	services.SetLLMService(llm)

	docs, err := normalisers.NewRecordNormaliser().Normalise(records)
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	idx, err := index.Build(context.Background(), embedder, docs, index.Options{})
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	services.SetIndex(idx, &domain.IndexStatus{Documents: idx.Len()})

	return services, embedder
}
