package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when an account record is not found.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when an account with the same email already exists.
var ErrDuplicateEmail = errors.New("account email already exists")

// ErrSessionNotFound is returned when a session record is not found.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionRevoked is returned when operating on a revoked session.
var ErrSessionRevoked = errors.New("session is revoked")

// Repository provides operations on the accounts and auth_sessions tables.
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	CountAccounts(ctx context.Context) (int, error)
	CreateSession(ctx context.Context, s *SessionRecord) error
	GetSession(ctx context.Context, id uuid.UUID) (*SessionRecord, error)
	// RevokeSession marks the session revoked and announces the revocation
	// to other processes.
	RevokeSession(ctx context.Context, id uuid.UUID) error
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
