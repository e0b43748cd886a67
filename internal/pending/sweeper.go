package pending

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically removes expired entries from a Store.
//
// It is a supervised task: the owner of the process lifecycle calls Start
// on boot and Stop on shutdown (or drives Run with its own context).
// Expired entries are already unresolvable before the sweep reaches them;
// sweeping only reclaims memory.
type Sweeper struct {
	store    Store
	maxAge   time.Duration
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepLogger sets the logger (default slog.Default()).
func WithSweepLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a sweeper that removes entries older than the
// store's TTL every interval. A non-positive interval selects
// DefaultSweepInterval.
func NewSweeper(store Store, interval time.Duration, opts ...SweeperOption) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &Sweeper{
		store:    store,
		maxAge:   store.TTL(),
		interval: interval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SweepOnce performs a single pass and returns the number of entries removed.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	removed, err := s.store.Sweep(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("pending sweep failed", "error", err, "event", "sweep_failed")
		return 0
	}
	if removed > 0 {
		s.logger.Debug("pending sweep", "removed", removed, "event", "sweep")
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled. It returns ctx.Err().
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// Start launches Run in a goroutine. Calling Start on a running sweeper
// is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		if err := s.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("pending sweeper stopped", "error", err)
		}
	}(s.done)
}

// Stop cancels a running sweeper and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
