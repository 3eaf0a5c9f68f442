package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned by a ProfileStore when no admin profile
// exists for the requested user.
var ErrProfileNotFound = errors.New("admin profile not found")

// ErrAuthorizationDenied is returned by Gate.SignIn when the credentials
// were accepted but the identity has no admin profile.
var ErrAuthorizationDenied = errors.New("access denied: admin privileges required")

// ErrGateClosed is returned when starting a gate that has been closed.
var ErrGateClosed = errors.New("gate is closed")

// ErrGateStarted is returned when starting a gate twice.
var ErrGateStarted = errors.New("gate already started")

// AuthService issues and revokes sessions and reports session changes.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// GetSession returns the current session, or nil when there is none.
	GetSession(ctx context.Context) (*Session, error)
	// Subscribe returns a feed of session changes. The returned function
	// releases the subscription and closes the channel.
	Subscribe() (<-chan Event, func())
}

// ProfileStore looks up admin profiles by user identifier.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}
