// Package worker runs background jobs of the concierge service.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Refresher periodically rebuilds the semantic index from the catalog.
// Until a first refresh succeeds it retries on the shorter RetryInterval.
//
// Multi-replica deployments coordinate through the catalog service's
// distributed lock; a refresh skipped because another replica holds it
// is not an error.
type Refresher struct {
	catalog driving.CatalogService
	logger  *slog.Logger

	interval      time.Duration
	retryInterval time.Duration
	runOnStart    bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RefresherConfig holds configuration for the refresher.
type RefresherConfig struct {
	Catalog       driving.CatalogService
	Logger        *slog.Logger
	Interval      time.Duration // Time between refreshes; 0 refreshes only on start
	RetryInterval time.Duration // Delay after a failed refresh while no index is served (default: 30s)
	RunOnStart    bool          // Refresh immediately when started
}

// NewRefresher creates a new catalog refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	retry := cfg.RetryInterval
	if retry <= 0 {
		retry = 30 * time.Second
	}

	return &Refresher{
		catalog:       cfg.Catalog,
		logger:        logger,
		interval:      cfg.Interval,
		retryInterval: retry,
		runOnStart:    cfg.RunOnStart,
	}
}

// Start begins the refresh loop.
// It runs until Stop is called or ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	r.logger.Info("catalog refresher starting", "interval", r.interval, "run_on_start", r.runOnStart)

	go r.run(ctx)
}

// Stop stops the loop and waits for an in-flight refresh to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	doneCh := r.doneCh
	r.mu.Unlock()

	<-doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("catalog refresher stopped")
}

// Done is closed when the loop exits.
func (r *Refresher) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doneCh
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.doneCh)

	var next time.Duration
	if r.runOnStart {
		next = r.refresh(ctx)
	} else {
		next = r.interval
	}

	for {
		if next <= 0 {
			// Periodic refresh disabled and the index is loaded
			select {
			case <-ctx.Done():
			case <-r.stopCh:
			}
			return
		}

		timer := time.NewTimer(next)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("catalog refresher context cancelled")
			return
		case <-r.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			next = r.refresh(ctx)
		}
	}
}

// refresh runs one refresh and returns the delay before the next one
func (r *Refresher) refresh(ctx context.Context) time.Duration {
	status, err := r.catalog.Refresh(ctx)
	switch {
	case err == nil:
		r.logger.Debug("scheduled catalog refresh done", "documents", status.Documents)
		return r.interval
	case errors.Is(err, domain.ErrRefreshInProgress):
		r.logger.Debug("catalog refresh already running, skipping cycle")
	case ctx.Err() != nil:
		return 0
	default:
		r.logger.Error("scheduled catalog refresh failed", "error", err)
	}

	if current := r.catalog.Status(); current == nil || !current.Ready {
		return r.retryInterval
	}
	return r.interval
}
