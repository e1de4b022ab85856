package projections

import (
	"context"
	"log/slog"
	"sort"

	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

// Booking pairs one of the caller's registrations with the activity it points
// at. Activity is nil when the activity could not be resolved, either because
// the registration carries no usable activity id or because the detail fetch
// failed; the registration itself is still listed so the user can cancel it.
type Booking struct {
	Registration registration.Registration
	Activity     *activity.Activity
}

// BookingSource covers the fetches QueryMyBookings needs.
type BookingSource interface {
	MyRegistrations(ctx context.Context) ([]registration.Registration, error)
	GetActivity(ctx context.Context, id int64) (activity.Detail, error)
}

// QueryMyBookings fetches the caller's registrations and enriches each with
// its activity details. A failed detail fetch degrades that one booking to a
// nil Activity instead of failing the whole query.
func QueryMyBookings(ctx context.Context, source BookingSource) ([]Booking, error) {
	regs, err := source.MyRegistrations(ctx)
	if err != nil {
		return nil, err
	}

	bookings := make([]Booking, 0, len(regs))
	for _, reg := range regs {
		booking := Booking{Registration: reg}
		if id, ok := reg.ResolveActivityID(); ok {
			detail, detailErr := source.GetActivity(ctx, id)
			if detailErr != nil {
				slog.Warn("booking_detail_fetch_failed", "registration_id", reg.ID, "activity_id", id, "error", detailErr)
			} else {
				act := detail.Activity
				booking.Activity = &act
			}
		} else {
			slog.Warn("booking_missing_activity_id", "registration_id", reg.ID)
		}
		bookings = append(bookings, booking)
	}

	// Newest registrations first.
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Registration.CreatedAt.After(bookings[j].Registration.CreatedAt)
	})
	return bookings, nil
}
