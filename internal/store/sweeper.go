package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pruner removes entries older than a cutoff. Every Store is a Pruner.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Sweeper periodically evicts entries older than maxAge.
type Sweeper struct {
	pruner   Pruner
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewSweeper creates a sweeper; it does nothing until Start.
func NewSweeper(p Pruner, maxAge, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		pruner:   p,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Sweep runs one eviction pass.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	n, err := s.pruner.DeleteOlderThan(ctx, s.now().Add(-s.maxAge))
	if err != nil {
		s.logger.Warn("sweep failed", "error", err)
		return 0, err
	}
	if n > 0 {
		s.logger.Info("swept old entries", "removed", n, "max_age", s.maxAge)
	}
	return n, nil
}

// Start schedules Sweep every interval if the interval is positive.
func (s *Sweeper) Start() {
	if s.interval <= 0 || s.maxAge <= 0 {
		return
	}
	go s.runRecurring()
}

// Stop ends the recurring sweep. It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// Done exports the read-only done channel.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}

func (s *Sweeper) runRecurring() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, _ = s.Sweep(context.Background())
		case <-s.done:
			return
		}
	}
}
