package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// stubBackend is a hand-rolled Backend; each call is counted and may be
// overridden per test.
type stubBackend struct {
	mu           sync.Mutex
	counselors   []api.Counselor
	appointments []api.Appointment
	slots        map[int64]string

	availabilityFn func(ctx context.Context, id int64) ([]availability.RawSlot, error)
	bookFn         func(ctx context.Context, req api.BookingRequest) (*api.Appointment, error)

	availabilityCalls atomic.Int32
	bookCalls         atomic.Int32
	cancelCalls       atomic.Int32
	booked            []api.BookingRequest
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		counselors: []api.Counselor{
			{ID: 2, Name: "Dr. Rivera", Email: "rivera@example.com", Specialty: "Anxiety"},
			{ID: 3, Name: "Dr. Okafor", Email: "okafor@example.com"},
		},
		slots: map[int64]string{
			2: `[{"dayOfWeek":3,"startTime":"14:00","endTime":"17:00"}]`,
			3: `[{"dayOfWeek":1,"startTime":"09:00:00","endTime":"12:00:00"},{"dayOfWeek":1,"startTime":"08:00","endTime":"09:00"}]`,
		},
	}
}

func (s *stubBackend) ListCounselors(ctx context.Context) ([]api.Counselor, error) {
	return s.counselors, nil
}

func (s *stubBackend) ListAppointments(ctx context.Context) ([]api.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Appointment(nil), s.appointments...), nil
}

func (s *stubBackend) CounselorAvailability(ctx context.Context, id int64, day *availability.Weekday) ([]availability.RawSlot, error) {
	s.availabilityCalls.Add(1)
	if s.availabilityFn != nil {
		return s.availabilityFn(ctx, id)
	}
	var raw []availability.RawSlot
	if body, ok := s.slots[id]; ok {
		if err := json.Unmarshal([]byte(body), &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (s *stubBackend) BookAppointment(ctx context.Context, req api.BookingRequest) (*api.Appointment, error) {
	s.bookCalls.Add(1)
	if s.bookFn != nil {
		return s.bookFn(ctx, req)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked = append(s.booked, req)
	appt := api.Appointment{
		ID:              int64(100 + len(s.appointments)),
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          api.StatusScheduled,
	}
	s.appointments = append(s.appointments, appt)
	return &appt, nil
}

func (s *stubBackend) CancelAppointment(ctx context.Context, id int64) (*api.Appointment, error) {
	s.cancelCalls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i].Status = api.StatusCanceled
			appt := s.appointments[i]
			return &appt, nil
		}
	}
	return nil, &api.Error{Status: 404, Message: "Appointment not found"}
}

// wednesday is 2024-01-10 at noon local time.
func wednesday() time.Time {
	return time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
}

func newTestWorkflow(t *testing.T, backend Backend, opts ...Option) *Workflow {
	t.Helper()
	opts = append([]Option{WithClock(wednesday)}, opts...)
	w := NewWorkflow(backend, logging.Discard(), opts...)
	require.NoError(t, w.Load(context.Background()))
	return w
}

func TestWorkflow_SelectCounselorDefaultsToToday(t *testing.T) {
	backend := newStubBackend()
	w := newTestWorkflow(t, backend)
	assert.Equal(t, Browsing, w.Snapshot().State)

	require.NoError(t, w.SelectCounselor(context.Background(), 2))

	snap := w.Snapshot()
	assert.Equal(t, CounselorSelected, snap.State)
	assert.Equal(t, "2024-01-10", snap.Draft.AppointmentDate)
	require.NotNil(t, snap.Counselor)
	assert.Equal(t, "Dr. Rivera", snap.Counselor.Name)
	assert.Equal(t, []availability.Slot{{DayOfWeek: 3, StartTime: "14:00", EndTime: "17:00"}}, snap.Suggestions)
	assert.Empty(t, snap.Notice)
	assert.False(t, snap.Loading)
}

func TestWorkflow_UnknownCounselor(t *testing.T) {
	w := newTestWorkflow(t, newStubBackend())
	assert.ErrorIs(t, w.SelectCounselor(context.Background(), 99), ErrUnknownCounselor)
	assert.Equal(t, Browsing, w.Snapshot().State)
}

func TestWorkflow_WednesdayHasSlotMondayIsEmptyButBookable(t *testing.T) {
	backend := newStubBackend()
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.ChangeDate(ctx, "2024-01-17")) // Wednesday
	assert.Len(t, w.Snapshot().Suggestions, 1)

	require.NoError(t, w.ChangeDate(ctx, "2024-01-15")) // Monday
	snap := w.Snapshot()
	assert.Empty(t, snap.Suggestions)
	assert.Equal(t, NoAvailabilityNotice, snap.Notice)
	assert.Equal(t, CounselorSelected, snap.State)

	// An empty suggestion list does not block a typed time.
	require.NoError(t, w.SetTime("10:00"))
	appt, err := w.Submit(ctx)
	require.NoError(t, err)
	require.NotNil(t, appt)
	assert.Equal(t, int32(1), backend.bookCalls.Load())
	assert.Equal(t, api.BookingRequest{CounselorID: 2, AppointmentDate: "2024-01-15", AppointmentTime: "10:00"}, backend.booked[0])
}

func TestWorkflow_SingleDigitHourRejectedLocally(t *testing.T) {
	backend := newStubBackend()
	reg := prometheus.NewRegistry()
	w := newTestWorkflow(t, backend, WithMetrics(metrics.NewBookingMetrics(reg)))
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.SetTime("9:30"))

	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrBadTime)
	assert.Equal(t, int32(0), backend.bookCalls.Load())
	assert.ErrorIs(t, w.Snapshot().Err, ErrBadTime)
	assert.Equal(t, SlotChosen, w.Snapshot().State)
}

func TestWorkflow_SubmitLocalValidation(t *testing.T) {
	backend := newStubBackend()
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoCounselor)

	require.NoError(t, w.SelectCounselor(ctx, 2))
	_, err = w.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoTime)

	require.NoError(t, w.ChangeDate(ctx, ""))
	require.NoError(t, w.SetTime("10:00"))
	_, err = w.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoDate)

	assert.ErrorIs(t, w.ChangeDate(ctx, "01/10/2024"), availability.ErrInvalidDate)

	for _, bad := range []string{"10:0", "10:60", "1000", "10:00:00", "ab:cd", "39:00x"} {
		require.NoError(t, w.ChangeDate(ctx, "2024-01-10"))
		require.NoError(t, w.SetTime(bad))
		_, err = w.Submit(ctx)
		assert.ErrorIs(t, err, ErrBadTime, bad)
	}
	assert.Equal(t, int32(0), backend.bookCalls.Load())
}

func TestWorkflow_ChooseSlotCopiesStartTime(t *testing.T) {
	w := newTestWorkflow(t, newStubBackend())
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 3))
	require.NoError(t, w.ChangeDate(ctx, "2024-01-08")) // Monday

	snap := w.Snapshot()
	require.Len(t, snap.Suggestions, 2)
	assert.Equal(t, "08:00", snap.Suggestions[0].StartTime)

	require.NoError(t, w.ChooseSlot(1))
	snap = w.Snapshot()
	assert.Equal(t, SlotChosen, snap.State)
	assert.Equal(t, "09:00", snap.Draft.AppointmentTime)

	assert.ErrorIs(t, w.ChooseSlot(5), ErrNoSuchSlot)
}

func TestWorkflow_BackendRejectionSurfacedVerbatim(t *testing.T) {
	backend := newStubBackend()
	backend.appointments = []api.Appointment{{ID: 1, AppointmentDate: "2024-01-03", AppointmentTime: "14:00", Status: api.StatusScheduled}}
	backend.bookFn = func(ctx context.Context, req api.BookingRequest) (*api.Appointment, error) {
		return nil, &api.Error{Status: 400, Message: "Time slot already booked"}
	}
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.ChooseSlot(0))
	_, err := w.Submit(ctx)
	require.Error(t, err)

	snap := w.Snapshot()
	assert.Equal(t, SlotChosen, snap.State)
	assert.Equal(t, "Time slot already booked", api.Message(snap.Err))
	assert.Len(t, snap.Appointments, 1)
	assert.Equal(t, "14:00", snap.Draft.AppointmentTime)
}

func TestWorkflow_SubmitSuccessResetsAndRefreshes(t *testing.T) {
	backend := newStubBackend()
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.ChooseSlot(0))
	_, err := w.Submit(ctx)
	require.NoError(t, err)

	snap := w.Snapshot()
	assert.Equal(t, Browsing, snap.State)
	assert.Nil(t, snap.Draft.CounselorID)
	assert.Empty(t, snap.Draft.AppointmentDate)
	assert.Empty(t, snap.Suggestions)
	assert.Len(t, snap.Appointments, 1)
}

func TestWorkflow_SubmitGuard(t *testing.T) {
	backend := newStubBackend()
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.bookFn = func(ctx context.Context, req api.BookingRequest) (*api.Appointment, error) {
		close(entered)
		<-release
		return &api.Appointment{ID: 1, Status: api.StatusScheduled}, nil
	}
	reg := prometheus.NewRegistry()
	w := newTestWorkflow(t, backend, WithMetrics(metrics.NewBookingMetrics(reg)))
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.ChooseSlot(0))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(ctx)
		done <- err
	}()
	<-entered

	assert.Equal(t, Submitting, w.Snapshot().State)
	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, w.SetTime("11:00"), ErrSubmitInFlight)
	assert.ErrorIs(t, w.CancelSelection(), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), backend.bookCalls.Load())
	assert.Equal(t, Browsing, w.Snapshot().State)
}

func TestWorkflow_StaleAvailabilityDiscarded(t *testing.T) {
	backend := newStubBackend()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int32
	backend.availabilityFn = func(ctx context.Context, id int64) ([]availability.RawSlot, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			// Counselor 2's schedule, which would match the first date only.
			return []availability.RawSlot{
				availability.Slot{DayOfWeek: availability.Wednesday, StartTime: "14:00", EndTime: "17:00"}.Raw(),
			}, nil
		}
		return []availability.RawSlot{
			availability.Slot{DayOfWeek: availability.Thursday, StartTime: "10:00", EndTime: "11:00"}.Raw(),
		}, nil
	}
	reg := prometheus.NewRegistry()
	w := newTestWorkflow(t, backend, WithMetrics(metrics.NewBookingMetrics(reg)))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- w.SelectCounselor(ctx, 2) }()
	<-firstStarted

	// The selection moves on to Thursday while Wednesday's request is out.
	require.NoError(t, w.ChangeDate(ctx, "2024-01-11"))
	close(releaseFirst)
	require.NoError(t, <-done)

	snap := w.Snapshot()
	assert.Equal(t, "2024-01-11", snap.Draft.AppointmentDate)
	assert.Equal(t, []availability.Slot{{DayOfWeek: availability.Thursday, StartTime: "10:00", EndTime: "11:00"}}, snap.Suggestions)

	families, err := reg.Gather()
	require.NoError(t, err)
	var discarded float64
	for _, fam := range families {
		if fam.GetName() == "mindcare_booking_stale_availability_discarded_total" {
			discarded = fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), discarded)
}

func TestWorkflow_AvailabilityFailureDegrades(t *testing.T) {
	backend := newStubBackend()
	fail := true
	backend.availabilityFn = func(ctx context.Context, id int64) ([]availability.RawSlot, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []availability.RawSlot{availability.Slot{DayOfWeek: 3, StartTime: "14:00", EndTime: "17:00"}.Raw()}, nil
	}
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	snap := w.Snapshot()
	assert.Equal(t, CounselorSelected, snap.State)
	assert.NotNil(t, snap.Suggestions)
	assert.Empty(t, snap.Suggestions)
	assert.Equal(t, RetryNotice, snap.Notice)
	assert.NoError(t, snap.Err)

	fail = false
	require.NoError(t, w.CheckAvailability(ctx))
	snap = w.Snapshot()
	assert.Len(t, snap.Suggestions, 1)
	assert.Empty(t, snap.Notice)
}

func TestWorkflow_CheckAvailabilityNeedsSelection(t *testing.T) {
	w := newTestWorkflow(t, newStubBackend())
	assert.ErrorIs(t, w.CheckAvailability(context.Background()), ErrNoCounselor)
}

func TestWorkflow_CancelSelectionDiscardsDraft(t *testing.T) {
	w := newTestWorkflow(t, newStubBackend())
	ctx := context.Background()
	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.ChooseSlot(0))

	require.NoError(t, w.CancelSelection())
	snap := w.Snapshot()
	assert.Equal(t, Browsing, snap.State)
	assert.Equal(t, Draft{}, snap.Draft)
	assert.Empty(t, snap.Suggestions)
	assert.Nil(t, snap.Counselor)
}

func TestWorkflow_CancelAppointment(t *testing.T) {
	backend := newStubBackend()
	backend.appointments = []api.Appointment{
		{ID: 1, AppointmentDate: "2024-01-10", AppointmentTime: "14:00", Status: api.StatusScheduled},
		{ID: 2, AppointmentDate: "2024-01-11", AppointmentTime: "10:00", Status: api.StatusCanceled},
	}
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	snap := w.Snapshot()
	assert.True(t, CanCancel(snap.Appointments[0]))
	assert.False(t, CanCancel(snap.Appointments[1]))

	assert.ErrorIs(t, w.CancelAppointment(ctx, 2), ErrAlreadyCanceled)
	assert.Equal(t, int32(0), backend.cancelCalls.Load())

	require.NoError(t, w.CancelAppointment(ctx, 1))
	assert.Equal(t, int32(1), backend.cancelCalls.Load())
	assert.False(t, CanCancel(w.Snapshot().Appointments[0]))

	assert.ErrorIs(t, w.CancelAppointment(ctx, 1), ErrAlreadyCanceled)
	assert.ErrorIs(t, w.CancelAppointment(ctx, 42), ErrAppointmentNotFound)
}

func TestFilterAppointments(t *testing.T) {
	list := []api.Appointment{
		{ID: 1, AppointmentDate: "2024-01-10", AppointmentTime: "14:00", Status: api.StatusScheduled, Counselor: &api.UserSummary{Name: "Dr. Rivera"}},
		{ID: 2, AppointmentDate: "2024-01-11", AppointmentTime: "10:00", Status: api.StatusCanceled, Counselor: &api.UserSummary{Email: "okafor@example.com"}},
		{ID: 3, AppointmentDate: "2024-02-01", AppointmentTime: "09:00", Status: api.StatusConfirmed, Patient: &api.UserSummary{Name: "Sam"}},
	}

	assert.Len(t, FilterAppointments(list, "", "all"), 3)
	assert.Len(t, FilterAppointments(list, "  ", ""), 3)

	got := FilterAppointments(list, "", "canceled")
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	got = FilterAppointments(list, "RIVERA", "all")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	got = FilterAppointments(list, "okafor", "all")
	require.Len(t, got, 1)

	got = FilterAppointments(list, "2024-01", "scheduled")
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.Len(t, FilterAppointments(list, "sam", ""), 1)
	assert.Empty(t, FilterAppointments(list, "nobody", "all"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "browsing", Browsing.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "state(9)", State(9).String())
}

func TestWorkflow_DirectoryReadsAreFresh(t *testing.T) {
	backend := newStubBackend()
	var fresh []bool
	backend.availabilityFn = func(ctx context.Context, id int64) ([]availability.RawSlot, error) {
		fresh = append(fresh, IsFresh(ctx))
		return nil, nil
	}
	w := newTestWorkflow(t, backend)
	ctx := context.Background()

	require.NoError(t, w.SelectCounselor(ctx, 2))
	require.NoError(t, w.CheckAvailability(ctx))
	assert.Equal(t, []bool{true, true}, fresh)
	assert.False(t, IsFresh(ctx))
}
