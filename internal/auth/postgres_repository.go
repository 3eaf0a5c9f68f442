package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RevocationChannel is the Postgres NOTIFY channel carrying revoked session ids.
const RevocationChannel = "auth_session_revoked"

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// CreateAccount inserts a new account record. Emails are stored lower-cased.
func (r *PostgresRepository) CreateAccount(ctx context.Context, a *Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	query := `
		INSERT INTO accounts (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// GetAccountByEmail retrieves a single account by its email address.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM accounts
		WHERE email = $1`

	var a Account
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying account: %w", err)
	}

	return &a, nil
}

// CountAccounts returns the total number of accounts.
func (r *PostgresRepository) CountAccounts(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

// CreateSession inserts a new session record for s.AccountID.
func (r *PostgresRepository) CreateSession(ctx context.Context, s *SessionRecord) error {
	query := `
		INSERT INTO auth_sessions (account_id, expires_at)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, s.AccountID, s.ExpiresAt).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrAccountNotFound
		}
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by its UUID, revoked or not.
func (r *PostgresRepository) GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error) {
	query := `
		SELECT s.id, s.account_id, a.email, s.created_at, s.expires_at, s.revoked_at
		FROM auth_sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.id = $1`

	var s SessionRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.AccountID, &s.Email, &s.CreatedAt, &s.ExpiresAt, &s.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	return &s, nil
}

// RevokeSession sets revoked_at on a session and notifies RevocationChannel
// in the same statement. Returns ErrSessionNotFound if the session does not
// exist, and ErrSessionRevoked if already revoked.
func (r *PostgresRepository) RevokeSession(ctx context.Context, id uuid.UUID) error {
	query := `
		WITH revoked AS (
			UPDATE auth_sessions
			SET revoked_at = NOW()
			WHERE id = $1 AND revoked_at IS NULL
			RETURNING id
		)
		SELECT pg_notify($2, id::text) FROM revoked`

	result, err := r.pool.Exec(ctx, query, id, RevocationChannel)
	if err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM auth_sessions WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking session existence: %w", err)
		}
		if !exists {
			return ErrSessionNotFound
		}
		return ErrSessionRevoked
	}

	return nil
}

// DeleteSessionsBefore removes sessions that expired or were revoked before
// cutoff and returns how many rows were deleted.
func (r *PostgresRepository) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM auth_sessions
		WHERE expires_at < $1 OR revoked_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting stale sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
