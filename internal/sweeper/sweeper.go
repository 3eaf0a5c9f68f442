// Package sweeper removes dead auth sessions in the background.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// SessionPruner deletes sessions that ended before a cutoff.
// It is satisfied by auth.Repository.
type SessionPruner interface {
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes sessions that expired or were revoked more
// than a retention period ago.
type Sweeper struct {
	repo      SessionPruner
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

// New creates a new Sweeper. Sessions are kept for retention after they end.
func New(repo SessionPruner, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		repo:      repo,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	slog.Info("session sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass and returns how many sessions were removed.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repo.DeleteSessionsBefore(ctx, cutoff)
	if err != nil {
		slog.Error("sweeper: failed to delete stale sessions", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("sweeper: deleted stale sessions", "count", n, "cutoff", cutoff)
	}
	return n
}
