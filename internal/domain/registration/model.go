package registration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Registration status constants
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
)

// Domain errors
var (
	ErrInvalidID          = errors.New("registration id must be a positive integer")
	ErrMissingActivityRef = errors.New("registration carries no resolvable activity reference")
	ErrInvalidStatus      = errors.New("registration status must be PENDING or CONFIRMED")
)

// FlexID is an identifier the backend may deliver either as a JSON number or
// as a numeric string. All activity-reference coercion goes through this one
// type; call sites never coerce inline.
type FlexID int64

// UnmarshalJSON accepts 5, 5.0 and "5" alike.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid quoted id %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
	}
	if raw == "" {
		*f = 0
		return nil
	}
	n, err := json.Number(raw).Int64()
	if err != nil {
		// Tolerate ids delivered as floats ("5.0") as long as they are integral.
		fl, ferr := json.Number(raw).Float64()
		if ferr != nil || fl != float64(int64(fl)) {
			return fmt.Errorf("invalid id %q: %w", raw, err)
		}
		n = int64(fl)
	}
	*f = FlexID(n)
	return nil
}

// Int64 returns the canonical numeric form.
func (f FlexID) Int64() int64 { return int64(f) }

// ActivityRef is the nested activity-reference shape some backend responses
// use in place of a flat activityId field.
type ActivityRef struct {
	ID FlexID `json:"id"`
}

// Registration is a user's claim on a slot in an Activity, owned by the
// backend. The client's copy is a read-only snapshot scoped to the current
// user. Exactly one of ActivityID and Activity is populated depending on
// which wire shape delivered the record.
type Registration struct {
	ID         int64
	UserID     int64
	ActivityID int64        // flat reference, 0 when absent
	Activity   *ActivityRef // nested reference, nil when absent
	Status     string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ResolveActivityID returns the activity this registration targets in
// canonical numeric form. The flat field wins when both shapes are present.
// PRE: Registration was decoded from a backend response or built in tests
// POST: Returns (id, true) for a positive resolvable reference, (0, false) otherwise
func (r *Registration) ResolveActivityID() (int64, bool) {
	if r.ActivityID > 0 {
		return r.ActivityID, true
	}
	if r.Activity != nil && r.Activity.ID > 0 {
		return r.Activity.ID.Int64(), true
	}
	return 0, false
}

// Validate checks the snapshot Registration for structural sanity.
// PRE: Registration struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Registration) Validate() error {
	if r.ID <= 0 {
		return ErrInvalidID
	}
	if _, ok := r.ResolveActivityID(); !ok {
		return ErrMissingActivityRef
	}
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return ErrInvalidStatus
	}
	return nil
}

// Cancellable reports whether the end user may still cancel this
// registration. Confirmed registrations are immutable to the end user.
func (r *Registration) Cancellable() bool {
	return r.Status != StatusConfirmed
}
