package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/runtime"
)

// Ensure catalogService implements CatalogService
var _ driving.CatalogService = (*catalogService)(nil)

const refreshLockName = "catalog-refresh"

// CatalogConfig holds dependencies for the catalog service.
type CatalogConfig struct {
	Source     driven.CatalogSource
	Normaliser driven.RecordNormaliser
	Builder    driven.IndexBuilder
	Services   *runtime.Services
	Lock       driven.DistributedLock // Optional: serialises refreshes across instances
	Logger     *slog.Logger

	// SkipInvalid drops records missing a required field instead of failing the refresh
	SkipInvalid bool
	LockTTL     time.Duration // TTL for the distributed lock (default: 5m)
}

// catalogService rebuilds the semantic index from the catalog source.
// A refresh is fetch, normalise, build, then swap; any failure leaves the
// served index untouched.
type catalogService struct {
	source      driven.CatalogSource
	normaliser  driven.RecordNormaliser
	builder     driven.IndexBuilder
	services    *runtime.Services
	lock        driven.DistributedLock
	logger      *slog.Logger
	skipInvalid bool
	lockTTL     time.Duration

	mu sync.Mutex
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(cfg CatalogConfig) driving.CatalogService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 5 * time.Minute
	}

	return &catalogService{
		source:      cfg.Source,
		normaliser:  cfg.Normaliser,
		builder:     cfg.Builder,
		services:    cfg.Services,
		lock:        cfg.Lock,
		logger:      logger,
		skipInvalid: cfg.SkipInvalid,
		lockTTL:     lockTTL,
	}
}

// Refresh fetches the catalog, rebuilds the index and swaps it in
func (s *catalogService) Refresh(ctx context.Context) (*domain.IndexStatus, error) {
	if !s.mu.TryLock() {
		return nil, domain.ErrRefreshInProgress
	}
	defer s.mu.Unlock()

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, refreshLockName, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire refresh lock: %w", err)
		}
		if !acquired {
			s.logger.Debug("refresh lock held by another instance")
			return nil, domain.ErrRefreshInProgress
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), refreshLockName); err != nil {
				s.logger.Warn("failed to release refresh lock", "error", err)
			}
		}()
	}

	start := time.Now()
	s.logger.Info("starting catalog refresh", "source", s.source.Name())

	records, err := s.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
		}
		s.logger.Error("catalog fetch failed", "source", s.source.Name(), "error", err)
		return nil, err
	}

	docs, skipped, err := s.normalise(records)
	if err != nil {
		s.logger.Error("catalog normalisation failed", "error", err)
		return nil, err
	}

	embedder := s.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrEmbeddingService)
	}

	idx, err := s.builder.Build(ctx, embedder, docs)
	if err != nil {
		s.logger.Error("index build failed", "documents", len(docs), "error", err)
		return nil, err
	}

	status := &domain.IndexStatus{
		Source:         s.source.Name(),
		EmbeddingModel: idx.Model(),
		Documents:      idx.Len(),
		Skipped:        skipped,
		BuiltAt:        idx.BuiltAt(),
		Took:           time.Since(start),
	}
	s.services.SetIndex(idx, status)

	s.logger.Info("catalog refresh completed",
		"source", status.Source,
		"documents", status.Documents,
		"skipped", status.Skipped,
		"took", status.Took)

	return s.services.IndexStatus(), nil
}

func (s *catalogService) normalise(records []domain.CatalogRecord) ([]*domain.Document, int, error) {
	if !s.skipInvalid {
		docs, err := s.normaliser.Normalise(records)
		return docs, 0, err
	}

	docs, errs := s.normaliser.NormaliseLenient(records)
	for _, err := range errs {
		s.logger.Warn("skipping catalog record", "error", err)
	}
	return docs, len(errs), nil
}

// Status returns the currently served index status
func (s *catalogService) Status() *domain.IndexStatus {
	return s.services.IndexStatus()
}

// Documents returns the Documents of the served index in catalog order
func (s *catalogService) Documents() []*domain.Document {
	idx := s.services.Index()
	if idx == nil {
		return nil
	}
	return idx.Documents()
}
