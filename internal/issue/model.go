package issue

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks how urgent an issue is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status tracks an issue through to resolution.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Defaults shown when a joined row is missing.
const (
	DefaultCategory    = "Other"
	DefaultSubmittedBy = "Unknown"
	DefaultUnit        = "N/A"
)

// Issue is a maintenance issue as displayed, with category, unit and
// submitter resolved to names.
type Issue struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    string
	Priority    Priority
	Status      Status
	SubmittedBy string
	Unit        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// NewIssue holds the fields needed to report an issue. Category and Unit
// are names; unknown names are stored as no category or unit.
type NewIssue struct {
	Title       string
	Description string
	Category    string
	Priority    Priority
	Unit        string
	SubmittedBy *uuid.UUID
}
