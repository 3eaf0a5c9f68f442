package issue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectIssues = `
		SELECT i.id, i.title, i.description,
		       COALESCE(c.name, '` + DefaultCategory + `'),
		       i.priority, i.status,
		       COALESCE(NULLIF(a.full_name, ''), '` + DefaultSubmittedBy + `'),
		       COALESCE(u.unit_number, '` + DefaultUnit + `'),
		       i.created_at, i.updated_at, i.resolved_at
		FROM issues i
		LEFT JOIN issue_categories c ON c.id = i.category_id
		LEFT JOIN units u ON u.id = i.unit_id
		LEFT JOIN admin_users a ON a.id = i.submitted_by`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// List retrieves all issues, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Issue, error) {
	rows, err := r.pool.Query(ctx, selectIssues+` ORDER BY i.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing issues: %w", err)
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning issue row: %w", err)
		}
		issues = append(issues, *is)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issue rows: %w", err)
	}

	if issues == nil {
		issues = []Issue{}
	}

	return issues, nil
}

// GetByID retrieves a single issue by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Issue, error) {
	is, err := scanIssue(r.pool.QueryRow(ctx, selectIssues+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying issue: %w", err)
	}
	return is, nil
}

// Create inserts a pending issue. Category and unit are looked up by name.
func (r *PostgresRepository) Create(ctx context.Context, in NewIssue) (*Issue, error) {
	query := `
		INSERT INTO issues (title, description, priority, status, category_id, unit_id, submitted_by)
		VALUES ($1, $2, $3, $4,
		        (SELECT id FROM issue_categories WHERE name = $5),
		        (SELECT id FROM units WHERE unit_number = $6),
		        $7)
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		in.Title,
		in.Description,
		in.Priority,
		StatusPending,
		in.Category,
		in.Unit,
		in.SubmittedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("inserting issue: %w", err)
	}

	return r.GetByID(ctx, id)
}

// UpdateStatus changes the status of an issue. resolved_at is set when the
// issue becomes resolved and cleared otherwise.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Issue, error) {
	query := `
		UPDATE issues
		SET status = $1::text,
		    resolved_at = CASE WHEN $1::text = 'resolved' THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, string(status), id)
	if err != nil {
		return nil, fmt.Errorf("updating issue status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func scanIssue(row pgx.Row) (*Issue, error) {
	var is Issue
	err := row.Scan(
		&is.ID, &is.Title, &is.Description, &is.Category,
		&is.Priority, &is.Status, &is.SubmittedBy, &is.Unit,
		&is.CreatedAt, &is.UpdatedAt, &is.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &is, nil
}
