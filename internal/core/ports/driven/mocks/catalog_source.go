package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

var _ driven.CatalogSource = (*MockCatalogSource)(nil)

// MockCatalogSource serves a fixed list of records
type MockCatalogSource struct {
	mu      sync.Mutex
	records []domain.CatalogRecord
	err     error

	FetchCalls int
}

// NewMockCatalogSource creates a source serving records
func NewMockCatalogSource(records ...domain.CatalogRecord) *MockCatalogSource {
	return &MockCatalogSource{records: records}
}

func (m *MockCatalogSource) Fetch(ctx context.Context) ([]domain.CatalogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.CatalogRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MockCatalogSource) Name() string {
	return "mock"
}

// SetRecords replaces the served records
func (m *MockCatalogSource) SetRecords(records ...domain.CatalogRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetError makes subsequent fetches fail with err
func (m *MockCatalogSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Venue builds a complete catalog record for tests
func Venue(id, name, address, cuisine, atmosphere string, capacity int, features ...string) domain.CatalogRecord {
	fields := map[string]any{
		domain.FieldName:        name,
		domain.FieldAddress:     address,
		domain.FieldCuisine:     cuisine,
		domain.FieldAtmosphere:  atmosphere,
		domain.FieldCapacityMax: float64(capacity),
	}
	if len(features) > 0 {
		list := make([]any, len(features))
		for i, f := range features {
			list[i] = f
		}
		fields[domain.FieldSpecialFeatures] = list
	}
	return domain.CatalogRecord{ID: id, Fields: fields}
}
