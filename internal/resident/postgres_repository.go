package resident

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const residentColumns = `id, first_name, last_name, email, phone, apartment_number, building,
		       move_in_date, move_out_date, emergency_contact_name, emergency_contact_phone,
		       notes, status, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new resident record. An empty status defaults to pending.
func (r *PostgresRepository) Create(ctx context.Context, res *Resident) error {
	if res.Status == "" {
		res.Status = StatusPending
	}

	query := `
		INSERT INTO residents (first_name, last_name, email, phone, apartment_number, building,
		                       move_in_date, move_out_date, emergency_contact_name,
		                       emergency_contact_phone, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		res.FirstName,
		res.LastName,
		res.Email,
		res.Phone,
		res.ApartmentNumber,
		res.Building,
		res.MoveInDate,
		res.MoveOutDate,
		res.EmergencyContactName,
		res.EmergencyContactPhone,
		res.Notes,
		res.Status,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting resident: %w", err)
	}

	return nil
}

// GetByID retrieves a single resident by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

// List retrieves a paginated, filtered list of residents, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var conditions []string
	var args []any
	argIdx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, searchCondition(argIdx))
		args = append(args, "%"+*filter.Query+"%")
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM residents %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting residents: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit

	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM residents
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, residentColumns, whereClause, argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	residents, err := r.query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing residents: %w", err)
	}

	return &ListResult{
		Residents: residents,
		Total:     total,
		Page:      filter.Page,
		Limit:     filter.Limit,
	}, nil
}

// Search matches q against first name, last name, email and apartment
// number, newest first.
func (r *PostgresRepository) Search(ctx context.Context, q string) ([]Resident, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM residents
		WHERE %s
		ORDER BY created_at DESC`, residentColumns, searchCondition(1))

	residents, err := r.query(ctx, query, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("searching residents: %w", err)
	}
	return residents, nil
}

// Update modifies the given fields of a resident and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Resident, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.FirstName != nil {
		set("first_name", *fields.FirstName)
	}
	if fields.LastName != nil {
		set("last_name", *fields.LastName)
	}
	if fields.Email != nil {
		set("email", *fields.Email)
	}
	if fields.Phone != nil {
		set("phone", *fields.Phone)
	}
	if fields.ApartmentNumber != nil {
		set("apartment_number", *fields.ApartmentNumber)
	}
	if fields.Building != nil {
		set("building", *fields.Building)
	}
	if fields.MoveInDate != nil {
		set("move_in_date", *fields.MoveInDate)
	}
	if fields.MoveOutDate != nil {
		set("move_out_date", *fields.MoveOutDate)
	}
	if fields.EmergencyContactName != nil {
		set("emergency_contact_name", *fields.EmergencyContactName)
	}
	if fields.EmergencyContactPhone != nil {
		set("emergency_contact_phone", *fields.EmergencyContactPhone)
	}
	if fields.Notes != nil {
		set("notes", *fields.Notes)
	}
	if fields.Status != nil {
		set("status", *fields.Status)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE residents
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, residentColumns)

	return r.scanOne(ctx, query, args...)
}

// Delete removes a resident by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM residents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting resident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats counts residents per status and returns the most recently added ones.
func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'inactive')
		FROM residents`

	var s Stats
	if err := r.pool.QueryRow(ctx, query).Scan(&s.Total, &s.Active, &s.Pending, &s.Inactive); err != nil {
		return nil, fmt.Errorf("counting residents: %w", err)
	}

	recentQuery := fmt.Sprintf(`
		SELECT %s
		FROM residents
		ORDER BY created_at DESC
		LIMIT $1`, residentColumns)

	recent, err := r.query(ctx, recentQuery, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recent residents: %w", err)
	}
	s.Recent = recent

	return &s, nil
}

func searchCondition(argIdx int) string {
	return fmt.Sprintf(
		"(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR apartment_number ILIKE $%[1]d)",
		argIdx,
	)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Resident, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var residents []Resident
	for rows.Next() {
		res, err := scanResident(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning resident row: %w", err)
		}
		residents = append(residents, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resident rows: %w", err)
	}

	if residents == nil {
		residents = []Resident{}
	}

	return residents, nil
}

// scanOne scans a single Resident row from a query. Returns ErrNotFound if no rows.
func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Resident, error) {
	res, err := scanResident(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning resident row: %w", err)
	}
	return res, nil
}

func scanResident(row pgx.Row) (*Resident, error) {
	var res Resident
	err := row.Scan(
		&res.ID, &res.FirstName, &res.LastName, &res.Email, &res.Phone,
		&res.ApartmentNumber, &res.Building, &res.MoveInDate, &res.MoveOutDate,
		&res.EmergencyContactName, &res.EmergencyContactPhone, &res.Notes,
		&res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
