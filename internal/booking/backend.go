// Package booking drives the patient-side "choose counselor, see
// availability, pick a time, book" flow as an explicit state machine that is
// independent of rendering.
package booking

import (
	"context"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

// Backend is the part of the API the workflow calls. *api.Client satisfies
// it; tests and the directory cache wrap or replace it.
type Backend interface {
	// ListCounselors returns the counselors the patient may book with.
	ListCounselors(ctx context.Context) ([]api.Counselor, error)

	// ListAppointments returns the patient's appointments.
	ListAppointments(ctx context.Context) ([]api.Appointment, error)

	// CounselorAvailability returns a counselor's weekly slots in wire form.
	// A nil day means every weekday.
	CounselorAvailability(ctx context.Context, counselorID int64, day *availability.Weekday) ([]availability.RawSlot, error)

	// BookAppointment submits a booking.
	BookAppointment(ctx context.Context, req api.BookingRequest) (*api.Appointment, error)

	// CancelAppointment cancels one of the patient's appointments.
	CancelAppointment(ctx context.Context, id int64) (*api.Appointment, error)
}

var _ Backend = (*api.Client)(nil)

type freshKey struct{}

// Fresh marks ctx so a caching Backend reads through to the service instead
// of answering from its cache.
func Fresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

// IsFresh reports whether ctx was marked by Fresh.
func IsFresh(ctx context.Context) bool {
	v, _ := ctx.Value(freshKey{}).(bool)
	return v
}
