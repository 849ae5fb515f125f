// Package scheduler runs the periodic background jobs of the worker process.
package scheduler

import (
	"context"
	"time"

	"accessgate/internal/application/reconcile"
	"accessgate/internal/shared/logger"
)

// ReconcileScheduler runs owner reconciliation on a fixed interval.
type ReconcileScheduler struct {
	service  *reconcile.Service
	catalog  reconcile.CatalogSource
	interval time.Duration
	logger   logger.Interface
	stopChan chan struct{}
}

// NewReconcileScheduler creates a scheduler that reconciles every interval.
func NewReconcileScheduler(
	service *reconcile.Service,
	catalog reconcile.CatalogSource,
	interval time.Duration,
	logger logger.Interface,
) *ReconcileScheduler {
	return &ReconcileScheduler{
		service:  service,
		catalog:  catalog,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start starts the reconcile loop. The first pass runs immediately.
func (s *ReconcileScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting reconcile scheduler", "interval", s.interval)
	go s.run(ctx)
}

// Stop stops the scheduler.
func (s *ReconcileScheduler) Stop() {
	close(s.stopChan)
}

func (s *ReconcileScheduler) run(ctx context.Context) {
	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("reconcile scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			s.logger.Infow("reconcile scheduler stopped")
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

func (s *ReconcileScheduler) reconcile(ctx context.Context) {
	summary, err := s.service.RunFromSource(ctx, s.catalog)
	if err != nil {
		s.logger.Errorw("reconciliation pass failed", "error", err)
		return
	}
	s.logger.Infow("reconciliation pass completed",
		"added", summary.Added,
		"removed", summary.Removed,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
	)
}
