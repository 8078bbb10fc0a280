package db

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Supervisor keeps probing the pool. While the store is down it re-pings on
// an exponential backoff so the pool re-dials as soon as the server is back.
type Supervisor struct {
	db       Pinger
	interval time.Duration
	backoff  *backoff.Backoff
	healthy  atomic.Bool

	// OnChange, if set, is called whenever the observed state flips.
	OnChange func(up bool)
}

func NewSupervisor(db Pinger, interval time.Duration) *Supervisor {
	s := &Supervisor{
		db:       db,
		interval: interval,
		backoff: &backoff.Backoff{
			Min:    500 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
	s.healthy.Store(true)
	return s
}

func (s *Supervisor) Healthy() bool {
	return s.healthy.Load()
}

// Run blocks until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	wait := s.interval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if s.Check(ctx) {
			s.backoff.Reset()
			wait = s.interval
			continue
		}

		wait = s.backoff.Duration()
		slog.Warn("database unreachable, retrying", "attempt", int(s.backoff.Attempt()), "retry_in", wait)
	}
}

// Check pings once and records the result.
func (s *Supervisor) Check(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.db.PingContext(pingCtx)
	up := err == nil

	if prev := s.healthy.Swap(up); prev != up {
		if up {
			slog.Info("database connection restored")
		} else {
			slog.Error("database connection lost", "error", err)
		}
		if s.OnChange != nil {
			s.OnChange(up)
		}
	}

	return up
}
