package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Listener relays session revocations announced on RevocationChannel by
// any process to the clients of a Service.
type Listener struct {
	pool  *pgxpool.Pool
	svc   *Service
	retry time.Duration
}

// NewListener creates a Listener for svc.
func NewListener(pool *pgxpool.Pool, svc *Service) *Listener {
	return &Listener{pool: pool, svc: svc, retry: 5 * time.Second}
}

// Run listens until ctx is cancelled, reconnecting after failures.
func (l *Listener) Run(ctx context.Context) {
	slog.Info("session listener started", "channel", RevocationChannel)
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			slog.Info("session listener stopped")
			return
		}
		slog.Warn("session listener: connection lost, retrying", "error", err, "retry", l.retry.String())

		select {
		case <-ctx.Done():
			slog.Info("session listener stopped")
			return
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+RevocationChannel); err != nil {
		return fmt.Errorf("listening on %s: %w", RevocationChannel, err)
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		id, err := uuid.Parse(n.Payload)
		if err != nil {
			slog.Warn("session listener: ignoring malformed payload", "payload", n.Payload)
			continue
		}
		l.svc.dispatchRevoked(id)
	}
}
