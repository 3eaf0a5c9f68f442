package session

import (
	"time"

	"github.com/google/uuid"
)

// Role is the privilege level recorded on an admin profile.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Session is a signed-in identity issued by the auth service.
type Session struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}

// Profile represents a row in the admin_users table. ID equals the
// user identifier of the owning session.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Role      Role
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// State is the gate's authorization verdict. Profile is only ever set
// together with Session.
type State struct {
	Loading bool
	Session *Session
	Profile *Profile
}

// Authenticated reports whether the state carries a session backed by
// an admin profile.
func (s State) Authenticated() bool {
	return !s.Loading && s.Session != nil && s.Profile != nil
}

// Unauthenticated reports whether the gate has settled without a session.
func (s State) Unauthenticated() bool {
	return !s.Loading && s.Session == nil
}

// Event is a session-change notification. A nil Session means the
// identity signed out or its session expired.
type Event struct {
	Session *Session
}
