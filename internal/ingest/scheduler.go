package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler reloads a Memo on a fixed interval so a long-running server
// picks up new pipeline exports. A failed reload keeps the previous data.
type Scheduler struct {
	memo     *Memo
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	onReload func()
}

func NewScheduler(memo *Memo, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		memo:     memo,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		logger:   logger,
	}
}

// OnReload registers fn to run after every successful reload.
func (s *Scheduler) OnReload(fn func()) {
	s.onReload = fn
}

// Run blocks until ctx is cancelled. The first load happens immediately.
func (s *Scheduler) Run(ctx context.Context) {
	s.reload(ctx)
	if s.interval <= 0 {
		return
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler: shutting down")
			return
		case <-ticker.Chan():
			s.reload(ctx)
		}
	}
}

func (s *Scheduler) reload(ctx context.Context) {
	start := s.clock.Now()
	if err := s.memo.Reload(ctx); err != nil {
		if ctx.Err() == nil {
			s.logger.Error("scheduler: reload failed", "source", s.memo.Name(), "error", err)
		}
		return
	}
	s.logger.Debug("scheduler: reloaded", "source", s.memo.Name(), "duration", s.clock.Since(start))
	if s.onReload != nil {
		s.onReload()
	}
}
