package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/residentdesk/residentdesk/internal/session"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// GetProfile retrieves the admin profile of a user.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*session.Profile, error) {
	query := `
		SELECT id, email, role, full_name, created_at, updated_at
		FROM admin_users
		WHERE id = $1`

	var p session.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Email, &p.Role, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying admin profile: %w", err)
	}

	return &p, nil
}

// Create inserts a new admin profile. p.ID must reference an existing account.
func (r *PostgresRepository) Create(ctx context.Context, p *session.Profile) error {
	query := `
		INSERT INTO admin_users (id, email, role, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Email, p.Role, p.FullName).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrDuplicateProfile
			case "23503":
				return ErrAccountNotFound
			}
		}
		return fmt.Errorf("inserting admin profile: %w", err)
	}

	return nil
}

// List retrieves all admin profiles ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]session.Profile, error) {
	query := `
		SELECT id, email, role, full_name, created_at, updated_at
		FROM admin_users
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing admin profiles: %w", err)
	}
	defer rows.Close()

	var profiles []session.Profile
	for rows.Next() {
		var p session.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.Role, &p.FullName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning admin profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admin profile rows: %w", err)
	}

	if profiles == nil {
		profiles = []session.Profile{}
	}

	return profiles, nil
}

// UpdateFullName changes the display name of a profile.
func (r *PostgresRepository) UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (*session.Profile, error) {
	query := `
		UPDATE admin_users
		SET full_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, role, full_name, created_at, updated_at`

	var p session.Profile
	err := r.pool.QueryRow(ctx, query, id, fullName).Scan(&p.ID, &p.Email, &p.Role, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("updating admin profile: %w", err)
	}

	return &p, nil
}
