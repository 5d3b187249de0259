package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/index"
	"github.com/custodia-labs/concierge/internal/normalisers"
	"github.com/custodia-labs/concierge/internal/runtime"
)

func newTestCatalog(source *mocks.MockCatalogSource, skipInvalid bool) (driving.CatalogService, *runtime.Services, *mocks.MockEmbeddingService, *mocks.MockDistributedLock) {
	embedder := mocks.NewMockEmbeddingService()
	services := runtime.NewServices()
	services.SetEmbeddingService(embedder)
	lock := mocks.NewMockDistributedLock()

	svc := NewCatalogService(CatalogConfig{
		Source:      source,
		Normaliser:  normalisers.NewRecordNormaliser(),
		Builder:     index.Builder{},
		Services:    services,
		Lock:        lock,
		SkipInvalid: skipInvalid,
	})
	return svc, services, embedder, lock
}

func TestCatalogService_Refresh(t *testing.T) {
	source := mocks.NewMockCatalogSource(
		leJardin(),
		mocks.Venue("rec2", "Chez Marais", "5 Place des Vosges, 75004 Paris", "French", "Cosy", 8, "Terrace"),
	)
	svc, services, _, lock := newTestCatalog(source, false)

	status, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Ready)
	assert.Equal(t, 2, status.Documents)
	assert.Equal(t, "mock", status.Source)
	assert.Equal(t, "mock-embedding-model", status.EmbeddingModel)
	assert.NotNil(t, services.Index())
	assert.False(t, lock.IsHeld(refreshLockName), "lock must be released")

	docs := svc.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "Le Jardin", docs[0].Venue.Name)
	assert.Equal(t, "Terrace", docs[1].Venue.SpecialFeatures)
}

func TestCatalogService_RefreshReplacesWholesale(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin())
	svc, services, _, _ := newTestCatalog(source, false)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	first := services.Index()

	source.SetRecords(
		mocks.Venue("a", "A", "Addr A", "", "", 0),
		mocks.Venue("b", "B", "Addr B", "", "", 0),
		mocks.Venue("c", "C", "Addr C", "", "", 0),
	)
	status, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, status.Documents)
	assert.NotSame(t, first, services.Index())
	assert.Equal(t, 1, first.Len(), "previous index is left intact for in-flight queries")
}

func TestCatalogService_FetchFailureKeepsIndex(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin())
	svc, services, _, _ := newTestCatalog(source, false)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	served := services.Index()

	source.SetError(errors.New("connection refused"))
	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogFetch)
	assert.Same(t, served, services.Index())
	assert.Equal(t, 2, source.FetchCalls, "fetch must not be retried")
}

func TestCatalogService_EmbeddingFailureKeepsIndex(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin())
	svc, services, embedder, _ := newTestCatalog(source, false)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	served := services.Index()

	embedder.SetFailNext(true)
	_, err = svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
	assert.Same(t, served, services.Index())
}

func TestCatalogService_StrictFailsOnInvalidRecord(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin(), domain.CatalogRecord{ID: "bad", Fields: map[string]any{"Name": "No address"}})
	svc, services, _, _ := newTestCatalog(source, false)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)
	assert.Nil(t, services.Index())
	assert.False(t, svc.Status().Ready)
}

func TestCatalogService_LenientSkipsInvalidRecord(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin(), domain.CatalogRecord{ID: "bad", Fields: map[string]any{"Name": "No address"}})
	svc, _, _, _ := newTestCatalog(source, true)

	status, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.Documents)
	assert.Equal(t, 1, status.Skipped)
}

func TestCatalogService_LockHeldElsewhere(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin())
	svc, _, _, lock := newTestCatalog(source, false)
	lock.SetLockHeld(refreshLockName, time.Minute)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrRefreshInProgress)
	assert.Equal(t, 0, source.FetchCalls)
}

func TestCatalogService_NoEmbeddingService(t *testing.T) {
	source := mocks.NewMockCatalogSource(leJardin())
	svc, services, _, _ := newTestCatalog(source, false)
	services.SetEmbeddingService(nil)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingService)
}

func TestCatalogService_EmptyCatalog(t *testing.T) {
	source := mocks.NewMockCatalogSource()
	svc, _, embedder, _ := newTestCatalog(source, false)

	status, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Ready)
	assert.Equal(t, 0, status.Documents)
	assert.Equal(t, 0, embedder.EmbedCalls)
	assert.Empty(t, svc.Documents())
}
