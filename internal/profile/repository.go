// Package profile stores admin profiles, one per account.
package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/session"
)

// ErrProfileNotFound is returned when an admin profile is not found.
var ErrProfileNotFound = session.ErrProfileNotFound

// ErrDuplicateProfile is returned when the account already has a profile.
var ErrDuplicateProfile = errors.New("admin profile already exists")

// ErrAccountNotFound is returned when creating a profile for an unknown account.
var ErrAccountNotFound = errors.New("account not found")

// Repository provides operations on the admin_users table.
type Repository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*session.Profile, error)
	Create(ctx context.Context, p *session.Profile) error
	List(ctx context.Context) ([]session.Profile, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) (*session.Profile, error)
}
