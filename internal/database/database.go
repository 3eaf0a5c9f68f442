// Package database owns the Postgres connection pool and the schema
// migrations of residentdesk.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// minConns is the smallest pool New builds. The session listener holds one
// connection for as long as it runs, so a pool of one would starve every
// repository call.
const minConns = 2

const pingTimeout = 5 * time.Second

// DB wraps the pgxpool.Pool shared by the repositories and the session
// listener.
type DB struct {
	pool *pgxpool.Pool
}

type options struct {
	appName  string
	maxConns int32
}

// Option configures the pool built by New.
type Option func(*options)

// WithApplicationName sets application_name on every connection so server
// and CLI sessions can be told apart in pg_stat_activity.
func WithApplicationName(name string) Option {
	return func(o *options) { o.appName = name }
}

// WithMaxConns caps the pool size. Values below 2 are raised to 2.
func WithMaxConns(n int32) Option {
	return func(o *options) { o.maxConns = n }
}

// New parses databaseURL, opens the pool and pings the database once.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	o := options{appName: "residentdesk"}
	for _, opt := range opts {
		opt(&o)
	}

	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	if o.appName != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = o.appName
	}
	if o.maxConns > 0 {
		poolCfg.MaxConns = o.maxConns
	}
	if poolCfg.MaxConns < minConns {
		poolCfg.MaxConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Debug("database pool ready", "application", o.appName, "maxConns", poolCfg.MaxConns)
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying pgxpool.Pool for repository use.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
