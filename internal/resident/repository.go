// Package resident stores the residents of the managed buildings.
package resident

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a resident record is not found.
var ErrNotFound = errors.New("resident not found")

// recentLimit is how many residents Stats returns as recent.
const recentLimit = 5

// Repository provides CRUD operations on the residents table.
type Repository interface {
	Create(ctx context.Context, res *Resident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resident, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Search(ctx context.Context, query string) ([]Resident, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Resident, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*Stats, error)
}
