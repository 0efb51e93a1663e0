package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/observability"
)

// Sweeper drops ledger entries whose tokens expired before now and reports how many it removed.
type Sweeper interface {
	Sweep(now time.Time) int
}

// RevocationSweeper periodically prunes an in-memory revocation ledger. Redis expires its
// entries by TTL and needs no sweeper.
type RevocationSweeper struct {
	ledger   Sweeper
	interval time.Duration
	logger   *zap.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewRevocationSweeper builds a sweeper. A non-positive interval defaults to one minute.
func NewRevocationSweeper(ledger Sweeper, interval time.Duration, logger *zap.Logger, metrics *observability.Metrics) *RevocationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevocationSweeper{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *RevocationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("revocation sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("revocation sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce runs a single pass.
func (s *RevocationSweeper) SweepOnce() int {
	removed := s.ledger.Sweep(s.now())
	s.metrics.RecordSwept(removed)
	if removed > 0 {
		s.logger.Debug("swept revoked tokens", zap.Int("removed", removed))
	}
	return removed
}
