package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a row in the accounts table.
type Account struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRecord represents a row in the auth_sessions table, joined with
// the owning account's email.
type SessionRecord struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while the session is active
}
