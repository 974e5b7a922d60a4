package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically removes uploads left behind by requests that never
// reached their cleanup, e.g. after a crash.
type Sweeper interface {
	Start(ctx context.Context)
	Stop()
	SweepOnce() int
}

type sweeper struct {
	storage    StorageService
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewSweeper(storage StorageService, interval, staleAfter time.Duration, logger *zap.Logger) Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sweeper{
		storage:    storage,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start runs one sweep immediately and then one per interval until Stop is
// called or ctx is done. A non-positive interval only runs the initial sweep.
func (s *sweeper) Start(ctx context.Context) {
	s.SweepOnce()

	if s.interval <= 0 {
		s.logger.Info("upload sweeper disabled")
		return
	}

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("upload sweeper started",
		zap.Duration("interval", s.interval),
		zap.Duration("stale_after", s.staleAfter),
	)
}

func (s *sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.logger.Info("upload sweeper stopped")
}

func (s *sweeper) SweepOnce() int {
	removed, err := s.storage.RemoveStale(s.staleAfter)
	if err != nil {
		s.logger.Warn("upload sweep failed", zap.Error(err))
	}
	if removed > 0 {
		s.logger.Info("removed stale uploads", zap.Int("count", removed))
	}
	return removed
}

func (s *sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}
