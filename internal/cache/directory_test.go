package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/booking"
	"github.com/wolfman30/mindcare/pkg/logging"
)

type countingBackend struct {
	counselorCalls    int
	availabilityCalls int
	fail              error

	// counselors and slots replace the defaults when set.
	counselors []api.Counselor
	slots      []availability.RawSlot
}

func (b *countingBackend) ListCounselors(ctx context.Context) ([]api.Counselor, error) {
	b.counselorCalls++
	if b.fail != nil {
		return nil, b.fail
	}
	if b.counselors != nil {
		return b.counselors, nil
	}
	return []api.Counselor{{ID: 2, Name: "Dr. Rivera", Specialty: "Anxiety"}}, nil
}

func (b *countingBackend) ListAppointments(ctx context.Context) ([]api.Appointment, error) {
	return nil, nil
}

func (b *countingBackend) CounselorAvailability(ctx context.Context, id int64, day *availability.Weekday) ([]availability.RawSlot, error) {
	b.availabilityCalls++
	if b.slots != nil {
		return b.slots, nil
	}
	return []availability.RawSlot{
		availability.Slot{DayOfWeek: availability.Wednesday, StartTime: "14:00", EndTime: "17:00"}.Raw(),
	}, nil
}

func (b *countingBackend) BookAppointment(ctx context.Context, req api.BookingRequest) (*api.Appointment, error) {
	return &api.Appointment{ID: 1}, nil
}

func (b *countingBackend) CancelAppointment(ctx context.Context, id int64) (*api.Appointment, error) {
	return &api.Appointment{ID: id, Status: api.StatusCanceled}, nil
}

func newTestDirectory(t *testing.T, backend *countingBackend, ttl time.Duration) (*Directory, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDirectory(backend, client, ttl, logging.Discard()), mr
}

func TestDirectory_CounselorsHitMissExpiry(t *testing.T) {
	backend := &countingBackend{}
	dir, mr := newTestDirectory(t, backend, time.Minute)
	ctx := context.Background()

	first, err := dir.ListCounselors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.counselorCalls)
	assert.True(t, mr.Exists(counselorKey))

	second, err := dir.ListCounselors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.counselorCalls)
	assert.Equal(t, first, second)

	mr.FastForward(2 * time.Minute)
	_, err = dir.ListCounselors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.counselorCalls)
}

func TestDirectory_AvailabilityNotCached(t *testing.T) {
	backend := &countingBackend{}
	dir, mr := newTestDirectory(t, backend, time.Minute)
	ctx := context.Background()

	raw, err := dir.CounselorAvailability(ctx, 2, nil)
	require.NoError(t, err)
	_, err = dir.CounselorAvailability(ctx, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.availabilityCalls)
	assert.Empty(t, mr.Keys())

	slots := availability.SortSlots(raw)
	assert.Equal(t, []availability.Slot{{DayOfWeek: availability.Wednesday, StartTime: "14:00", EndTime: "17:00"}}, slots)
}

func TestDirectory_FreshReadRefillsCache(t *testing.T) {
	backend := &countingBackend{}
	dir, _ := newTestDirectory(t, backend, time.Minute)
	ctx := context.Background()

	_, err := dir.ListCounselors(ctx)
	require.NoError(t, err)

	backend.counselors = []api.Counselor{}
	got, err := dir.ListCounselors(booking.Fresh(ctx))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, backend.counselorCalls)

	got, err = dir.ListCounselors(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "cache holds the fresh copy")
	assert.Equal(t, 2, backend.counselorCalls)
}

func TestDirectory_WorkflowSeesBackendChanges(t *testing.T) {
	backend := &countingBackend{}
	dir, _ := newTestDirectory(t, backend, time.Hour)
	ctx := context.Background()
	wednesday := func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local) }

	first := booking.NewWorkflow(dir, logging.Discard(), booking.WithClock(wednesday))
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.SelectCounselor(ctx, 2))
	require.Len(t, first.Snapshot().Suggestions, 1)

	// The counselor clears their hours and gains a colleague from another session.
	backend.slots = []availability.RawSlot{}
	backend.counselors = []api.Counselor{
		{ID: 2, Name: "Dr. Rivera", Specialty: "Anxiety"},
		{ID: 3, Name: "Dr. Okafor", Specialty: "Depression"},
	}

	second := booking.NewWorkflow(dir, logging.Discard(), booking.WithClock(wednesday))
	require.NoError(t, second.Load(ctx))
	assert.Len(t, second.Snapshot().Counselors, 2)
	require.NoError(t, second.SelectCounselor(ctx, 2))
	snap := second.Snapshot()
	assert.Empty(t, snap.Suggestions)
	assert.Equal(t, booking.NoAvailabilityNotice, snap.Notice)
}

func TestDirectory_Invalidate(t *testing.T) {
	backend := &countingBackend{}
	dir, mr := newTestDirectory(t, backend, time.Minute)
	ctx := context.Background()

	_, _ = dir.ListCounselors(ctx)
	require.NoError(t, dir.Invalidate(ctx))
	assert.False(t, mr.Exists(counselorKey))

	_, _ = dir.ListCounselors(ctx)
	assert.Equal(t, 2, backend.counselorCalls)
}

func TestDirectory_BackendErrorNotCached(t *testing.T) {
	backend := &countingBackend{fail: errors.New("backend down")}
	dir, mr := newTestDirectory(t, backend, time.Minute)

	_, err := dir.ListCounselors(context.Background())
	assert.Error(t, err)
	assert.False(t, mr.Exists(counselorKey))
}

func TestDirectory_RedisDownFallsThrough(t *testing.T) {
	backend := &countingBackend{}
	dir, mr := newTestDirectory(t, backend, time.Minute)
	mr.Close()

	got, err := dir.ListCounselors(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, backend.counselorCalls)
}

func TestDirectory_CorruptEntryIgnored(t *testing.T) {
	backend := &countingBackend{}
	dir, mr := newTestDirectory(t, backend, time.Minute)
	require.NoError(t, mr.Set(counselorKey, "{not json"))

	got, err := dir.ListCounselors(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, backend.counselorCalls)
}

func TestDirectory_WritesPassThrough(t *testing.T) {
	backend := &countingBackend{}
	dir, _ := newTestDirectory(t, backend, time.Minute)
	appt, err := dir.CancelAppointment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, api.StatusCanceled, appt.Status)
}
