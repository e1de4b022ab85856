package activity

import (
	"errors"
	"strings"
	"time"
)

// Lifecycle status constants
const (
	StatusDraft     = "draft"
	StatusOpen      = "open"
	StatusFull      = "full"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
	StatusDeleted   = "deleted"
)

// Activity type constants
const (
	TypeWorkshop    = "workshop"
	TypeSeminar     = "seminar"
	TypeCompetition = "competition"
	TypeSocial      = "social"
	TypeOther       = "other"
)

// ValidStatuses contains all lifecycle statuses the backend may deliver.
var ValidStatuses = []string{StatusDraft, StatusOpen, StatusFull, StatusClosed, StatusCancelled, StatusDeleted}

// Domain errors
var (
	ErrEmptyName      = errors.New("activity name cannot be empty")
	ErrInvalidStatus  = errors.New("activity status must be a known lifecycle status")
	ErrInvalidWindow  = errors.New("activity end time must be after start time")
	ErrInvalidID      = errors.New("activity id must be a positive integer")
	ErrNegativeCount  = errors.New("participant count cannot be negative")
	ErrBadMaxCapacity = errors.New("max participants must be positive when set")
)

// Activity is a schedulable event owned by the backend. The client holds a
// read-only cached copy, replaced wholesale on each refresh.
type Activity struct {
	ID                  int64
	Name                string
	Description         string
	Location            string
	ImageURL            string
	Type                string
	StartTime           time.Time
	EndTime             time.Time
	MaxParticipants     *int // nil = unlimited
	CurrentParticipants int
	Status              string
}

// Validate checks the cached Activity for structural sanity.
// PRE: Activity struct is populated from a backend response
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if a.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Status != "" && !isValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	if !a.StartTime.IsZero() && !a.EndTime.IsZero() && !a.EndTime.After(a.StartTime) {
		return ErrInvalidWindow
	}
	if a.CurrentParticipants < 0 {
		return ErrNegativeCount
	}
	if a.MaxParticipants != nil && *a.MaxParticipants <= 0 {
		return ErrBadMaxCapacity
	}
	return nil
}

// IsFull reports whether the activity has reached capacity. Unlimited
// activities (nil MaxParticipants) are never full.
func (a *Activity) IsFull() bool {
	if a.MaxParticipants == nil {
		return false
	}
	return a.CurrentParticipants >= *a.MaxParticipants
}

// Visible reports whether the activity should appear in the client's list.
// Cancelled and deleted activities are never shown as registerable.
func (a *Activity) Visible() bool {
	return a.Status != StatusCancelled && a.Status != StatusDeleted
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
