// Package issue stores maintenance issues reported for units.
package issue

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an issue record is not found.
var ErrNotFound = errors.New("issue not found")

// Repository provides operations on the issues table.
type Repository interface {
	List(ctx context.Context) ([]Issue, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Issue, error)
	Create(ctx context.Context, in NewIssue) (*Issue, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Issue, error)
}
