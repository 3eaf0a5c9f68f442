package resident

import (
	"time"

	"github.com/google/uuid"
)

// Status is the occupancy state of a resident.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// Resident represents a row in the residents table.
type Resident struct {
	ID                    uuid.UUID
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	ApartmentNumber       string
	Building              string
	MoveInDate            time.Time
	MoveOutDate           *time.Time
	EmergencyContactName  string
	EmergencyContactPhone string
	Notes                 *string
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ListFilter holds optional filters and pagination for listing residents.
type ListFilter struct {
	Status *Status
	Query  *string // partial match over name, email and apartment (ILIKE)
	Page   int     // default 1
	Limit  int     // default 20
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Residents []Resident
	Total     int
	Page      int
	Limit     int
}

// UpdateFields holds updatable fields on a resident record.
// Nil fields are not updated.
type UpdateFields struct {
	FirstName             *string
	LastName              *string
	Email                 *string
	Phone                 *string
	ApartmentNumber       *string
	Building              *string
	MoveInDate            *time.Time
	MoveOutDate           *time.Time
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Notes                 *string
	Status                *Status
}

// Stats summarises the residents table for the dashboard.
type Stats struct {
	Total    int
	Active   int
	Pending  int
	Inactive int
	Recent   []Resident
}
