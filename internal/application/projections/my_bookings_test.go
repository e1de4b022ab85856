package projections_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/betterpursue/sproom/internal/application/projections"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

type fakeBookingSource struct {
	regs       []registration.Registration
	regsErr    error
	details    map[int64]activity.Detail
	detailErrs map[int64]error
	fetched    []int64
}

func (f *fakeBookingSource) MyRegistrations(_ context.Context) ([]registration.Registration, error) {
	return f.regs, f.regsErr
}

func (f *fakeBookingSource) GetActivity(_ context.Context, id int64) (activity.Detail, error) {
	f.fetched = append(f.fetched, id)
	if err, ok := f.detailErrs[id]; ok {
		return activity.Detail{}, err
	}
	return f.details[id], nil
}

// TestQueryMyBookings tests enrichment of registrations with their activity
// details, including the degraded paths.
func TestQueryMyBookings(t *testing.T) {
	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeBookingSource{
		regs: []registration.Registration{
			{ID: 10, ActivityID: 1, Status: registration.StatusPending, CreatedAt: base},
			{ID: 11, Activity: &registration.ActivityRef{ID: 2}, Status: registration.StatusConfirmed, CreatedAt: base.Add(time.Hour)},
			{ID: 12, Status: registration.StatusPending, CreatedAt: base.Add(2 * time.Hour)}, // no activity reference
			{ID: 13, ActivityID: 3, Status: registration.StatusPending, CreatedAt: base.Add(3 * time.Hour)},
		},
		details: map[int64]activity.Detail{
			1: {Activity: activity.Activity{ID: 1, Name: "Football"}},
			2: {Activity: activity.Activity{ID: 2, Name: "Yoga"}},
		},
		detailErrs: map[int64]error{
			3: errors.New("boom"),
		},
	}

	bookings, err := projections.QueryMyBookings(context.Background(), source)
	if err != nil {
		t.Fatalf("QueryMyBookings() error = %v", err)
	}
	if len(bookings) != 4 {
		t.Fatalf("expected 4 bookings, got %d", len(bookings))
	}

	// Newest first.
	wantOrder := []int64{13, 12, 11, 10}
	for i, want := range wantOrder {
		if bookings[i].Registration.ID != want {
			t.Errorf("bookings[%d].Registration.ID = %d, want %d", i, bookings[i].Registration.ID, want)
		}
	}

	byReg := make(map[int64]projections.Booking, len(bookings))
	for _, b := range bookings {
		byReg[b.Registration.ID] = b
	}
	if byReg[10].Activity == nil || byReg[10].Activity.Name != "Football" {
		t.Error("booking 10 should carry the Football activity")
	}
	if byReg[11].Activity == nil || byReg[11].Activity.Name != "Yoga" {
		t.Error("booking 11 should resolve its nested reference to Yoga")
	}
	if byReg[12].Activity != nil {
		t.Error("booking 12 has no activity reference and must degrade to nil")
	}
	if byReg[13].Activity != nil {
		t.Error("booking 13's failed detail fetch must degrade to nil, not fail the query")
	}

	// The unresolvable registration must not trigger a detail fetch.
	for _, id := range source.fetched {
		if id == 0 {
			t.Error("detail fetch issued for an unresolvable reference")
		}
	}
}

// TestQueryMyBookings_ListFailure tests that a failed registration fetch
// fails the whole query.
func TestQueryMyBookings_ListFailure(t *testing.T) {
	source := &fakeBookingSource{regsErr: errors.New("network down")}
	if _, err := projections.QueryMyBookings(context.Background(), source); err == nil {
		t.Fatal("expected error when the registration list cannot be fetched")
	}
}

// TestQueryMyBookings_Empty tests the empty list path.
func TestQueryMyBookings_Empty(t *testing.T) {
	source := &fakeBookingSource{}
	bookings, err := projections.QueryMyBookings(context.Background(), source)
	if err != nil {
		t.Fatalf("QueryMyBookings() error = %v", err)
	}
	if len(bookings) != 0 {
		t.Errorf("expected no bookings, got %d", len(bookings))
	}
	if len(source.fetched) != 0 {
		t.Error("no detail fetches expected for an empty list")
	}
}
