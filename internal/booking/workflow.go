package booking

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
	"github.com/wolfman30/mindcare/internal/observability/metrics"
	"github.com/wolfman30/mindcare/pkg/logging"
)

var bookingTracer = otel.Tracer("mindcare.internal.booking")

// timePattern is the only appointment time shape submitted to the backend.
var timePattern = regexp.MustCompile(`^[0-2][0-9]:[0-5][0-9]$`)

const (
	// NoAvailabilityNotice is shown when the chosen weekday has no slots.
	// Booking stays possible: suggestions are not a constraint.
	NoAvailabilityNotice = "No availability configured for that day. You can still request a time."
	// RetryNotice is shown when the availability fetch failed.
	RetryNotice = "Could not load availability. Check again to retry."
)

// Submission outcomes reported to metrics.
const (
	outcomeBooked   = "booked"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeInFlight = "in_flight"
)

// State is the workflow position.
type State int

const (
	Browsing State = iota
	CounselorSelected
	SlotChosen
	Submitting
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case CounselorSelected:
		return "counselor_selected"
	case SlotChosen:
		return "slot_chosen"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Draft is the unsent booking. It is discarded on success and on
// CancelSelection.
type Draft struct {
	CounselorID     *int64
	AppointmentDate string
	AppointmentTime string
}

func (d Draft) clone() Draft {
	if d.CounselorID != nil {
		id := *d.CounselorID
		d.CounselorID = &id
	}
	return d
}

// Snapshot is a point-in-time copy of the workflow for rendering.
type Snapshot struct {
	State        State
	Draft        Draft
	Counselor    *api.Counselor
	Suggestions  []availability.Slot
	Loading      bool
	Notice       string
	Err          error
	Appointments []api.Appointment
	Counselors   []api.Counselor
}

// availabilityTag identifies one outstanding availability request.
type availabilityTag struct {
	counselorID int64
	date        string
	seq         uint64
}

// Workflow is safe for concurrent use. Backend calls run outside the lock;
// their results are applied only if the selection they were issued for is
// still current.
type Workflow struct {
	backend Backend
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	now     func() time.Time

	mu           sync.Mutex
	state        State
	draft        Draft
	suggestions  []availability.Slot
	loading      bool
	notice       string
	lastErr      error
	appointments []api.Appointment
	counselors   []api.Counselor
	seq          uint64
	inFlight     bool
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithMetrics records submissions and discarded stale responses.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(w *Workflow) {
		w.metrics = m
	}
}

// WithClock overrides time.Now, which decides the default date.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// NewWorkflow returns a workflow in Browsing.
func NewWorkflow(backend Backend, logger *logging.Logger, opts ...Option) *Workflow {
	if backend == nil {
		panic("booking: backend required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	w := &Workflow{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		state:   Browsing,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load fetches the counselor directory and the patient's appointments and
// resets the workflow to Browsing. Reads bypass any directory cache.
func (w *Workflow) Load(ctx context.Context) error {
	ctx = Fresh(ctx)
	counselors, err := w.backend.ListCounselors(ctx)
	if err != nil {
		return err
	}
	appointments, err := w.backend.ListAppointments(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.counselors = counselors
	w.appointments = appointments
	w.resetLocked()
	return nil
}

// SelectCounselor moves to CounselorSelected for id. The date defaults to
// today when none was chosen yet, and suggestions are refreshed.
func (w *Workflow) SelectCounselor(ctx context.Context, id int64) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if len(w.counselors) > 0 && w.findCounselorLocked(id) == nil {
		w.mu.Unlock()
		return ErrUnknownCounselor
	}
	w.draft.CounselorID = &id
	w.draft.AppointmentTime = ""
	if w.draft.AppointmentDate == "" {
		w.draft.AppointmentDate = availability.Today(w.now())
	}
	w.state = CounselorSelected
	w.lastErr = nil
	tag := w.beginRefreshLocked()
	w.mu.Unlock()

	w.fetchAvailability(ctx, tag)
	return nil
}

// ChangeDate sets the draft date. With a counselor selected the suggestions
// are recomputed for the new weekday. An empty date clears the suggestions.
func (w *Workflow) ChangeDate(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := availability.DayOfWeekFromDate(date); err != nil {
			return err
		}
	}

	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	w.draft.AppointmentDate = date
	w.lastErr = nil
	if w.draft.CounselorID == nil || date == "" {
		w.seq++
		w.suggestions = nil
		w.loading = false
		w.notice = ""
		w.mu.Unlock()
		return nil
	}
	tag := w.beginRefreshLocked()
	w.mu.Unlock()

	w.fetchAvailability(ctx, tag)
	return nil
}

// CheckAvailability refetches suggestions for the current selection. It is
// the retry path after a failed fetch.
func (w *Workflow) CheckAvailability(ctx context.Context) error {
	w.mu.Lock()
	switch {
	case w.inFlight:
		w.mu.Unlock()
		return ErrSubmitInFlight
	case w.draft.CounselorID == nil:
		w.mu.Unlock()
		return ErrNoCounselor
	case w.draft.AppointmentDate == "":
		w.mu.Unlock()
		return ErrNoDate
	}
	tag := w.beginRefreshLocked()
	w.mu.Unlock()

	w.fetchAvailability(ctx, tag)
	return nil
}

// ChooseSlot copies the start time of suggestion i into the draft.
func (w *Workflow) ChooseSlot(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrSubmitInFlight
	}
	if w.draft.CounselorID == nil {
		return ErrNoCounselor
	}
	if i < 0 || i >= len(w.suggestions) {
		return ErrNoSuchSlot
	}
	w.draft.AppointmentTime = clockTime(w.suggestions[i].StartTime)
	w.state = SlotChosen
	w.lastErr = nil
	return nil
}

// SetTime sets a typed time. It is stored as given and validated on Submit.
func (w *Workflow) SetTime(t string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrSubmitInFlight
	}
	w.draft.AppointmentTime = strings.TrimSpace(t)
	w.lastErr = nil
	if w.draft.CounselorID == nil {
		return nil
	}
	if w.draft.AppointmentTime == "" {
		w.state = CounselorSelected
	} else {
		w.state = SlotChosen
	}
	return nil
}

// Submit validates the draft locally, then books it. Local failures never
// reach the network. Only one submission may be in flight; a concurrent call
// gets ErrSubmitInFlight. On success the workflow returns to Browsing with a
// refreshed appointment list. A backend rejection is kept as the last error
// and leaves the appointment list untouched.
func (w *Workflow) Submit(ctx context.Context) (*api.Appointment, error) {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		w.metrics.ObserveSubmission(outcomeInFlight)
		return nil, ErrSubmitInFlight
	}
	if err := validateDraft(w.draft); err != nil {
		w.lastErr = err
		w.mu.Unlock()
		w.metrics.ObserveSubmission(outcomeInvalid)
		return nil, err
	}
	req := api.BookingRequest{
		CounselorID:     *w.draft.CounselorID,
		AppointmentDate: w.draft.AppointmentDate,
		AppointmentTime: w.draft.AppointmentTime,
	}
	w.inFlight = true
	w.state = Submitting
	w.lastErr = nil
	w.mu.Unlock()

	ctx, span := bookingTracer.Start(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("mindcare.counselor_id", req.CounselorID),
		attribute.String("mindcare.appointment_date", req.AppointmentDate),
	)

	created, err := w.backend.BookAppointment(ctx, req)
	if err != nil {
		span.RecordError(err)
		w.mu.Lock()
		w.inFlight = false
		w.state = SlotChosen
		w.lastErr = err
		w.mu.Unlock()
		w.metrics.ObserveSubmission(outcomeRejected)
		w.logger.Warn("booking rejected", "counselor_id", req.CounselorID, "date", req.AppointmentDate, "error", api.Message(err))
		return nil, err
	}

	refreshed, listErr := w.backend.ListAppointments(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if listErr != nil {
		w.logger.Warn("appointment refresh after booking failed", "error", listErr)
		if created != nil {
			w.appointments = append(w.appointments, *created)
		}
	} else {
		w.appointments = refreshed
	}
	w.resetLocked()
	w.metrics.ObserveSubmission(outcomeBooked)

	var createdID int64
	if created != nil {
		createdID = created.ID
	}
	w.logger.Info("appointment booked", "appointment_id", createdID, "counselor_id", req.CounselorID, "date", req.AppointmentDate)
	return created, nil
}

// CancelSelection discards the draft and returns to Browsing. Any pending
// availability response is dropped on arrival.
func (w *Workflow) CancelSelection() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrSubmitInFlight
	}
	w.resetLocked()
	return nil
}

// CancelAppointment cancels appointment id. An appointment already known to
// be canceled is refused without a network call.
func (w *Workflow) CancelAppointment(ctx context.Context, id int64) error {
	w.mu.Lock()
	idx := w.findAppointmentLocked(id)
	if idx < 0 {
		w.mu.Unlock()
		return ErrAppointmentNotFound
	}
	if !CanCancel(w.appointments[idx]) {
		w.mu.Unlock()
		return ErrAlreadyCanceled
	}
	w.mu.Unlock()

	updated, err := w.backend.CancelAppointment(ctx, id)
	if err != nil {
		return err
	}

	refreshed, listErr := w.backend.ListAppointments(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if listErr == nil {
		w.appointments = refreshed
		return nil
	}
	w.logger.Warn("appointment refresh after cancel failed", "error", listErr)
	if i := w.findAppointmentLocked(id); i >= 0 && updated != nil {
		w.appointments[i] = *updated
	}
	return nil
}

// Snapshot returns a copy of the current workflow for rendering.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:        w.state,
		Draft:        w.draft.clone(),
		Suggestions:  copySlots(w.suggestions),
		Loading:      w.loading,
		Notice:       w.notice,
		Err:          w.lastErr,
		Appointments: append([]api.Appointment(nil), w.appointments...),
		Counselors:   append([]api.Counselor(nil), w.counselors...),
	}
	if w.draft.CounselorID != nil {
		if c := w.findCounselorLocked(*w.draft.CounselorID); c != nil {
			cp := *c
			snap.Counselor = &cp
		}
	}
	return snap
}

// CanCancel reports whether a cancel action should be offered for a.
func CanCancel(a api.Appointment) bool {
	return !a.IsCanceled()
}

// FilterAppointments applies the "My Appointments" search box and status
// filter. status "" or "all" matches every status; query matches the date,
// time, status and the other party's name, case-insensitively.
func FilterAppointments(list []api.Appointment, query, status string) []api.Appointment {
	status = strings.TrimSpace(status)
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]api.Appointment, 0, len(list))
	for _, a := range list {
		if status != "" && status != "all" && string(a.Status) != status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(appointmentHaystack(a)), needle) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func appointmentHaystack(a api.Appointment) string {
	parts := []string{a.AppointmentDate, a.AppointmentTime, string(a.Status)}
	if a.Counselor != nil {
		parts = append(parts, a.Counselor.DisplayName())
	}
	if a.Patient != nil {
		parts = append(parts, a.Patient.DisplayName())
	}
	return strings.Join(parts, " ")
}

func validateDraft(d Draft) error {
	switch {
	case d.CounselorID == nil:
		return ErrNoCounselor
	case d.AppointmentDate == "":
		return ErrNoDate
	case d.AppointmentTime == "":
		return ErrNoTime
	case !timePattern.MatchString(d.AppointmentTime):
		return ErrBadTime
	}
	if _, err := availability.DayOfWeekFromDate(d.AppointmentDate); err != nil {
		return err
	}
	return nil
}

// beginRefreshLocked tags a new availability request and marks it loading.
func (w *Workflow) beginRefreshLocked() availabilityTag {
	w.seq++
	w.loading = true
	w.notice = ""
	return availabilityTag{
		counselorID: *w.draft.CounselorID,
		date:        w.draft.AppointmentDate,
		seq:         w.seq,
	}
}

func (w *Workflow) fetchAvailability(ctx context.Context, tag availabilityTag) {
	raw, err := w.backend.CounselorAvailability(Fresh(ctx), tag.counselorID, nil)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isCurrentLocked(tag) {
		w.metrics.ObserveStaleDiscard()
		w.logger.Debug("discarding stale availability response", "counselor_id", tag.counselorID, "date", tag.date)
		return
	}
	w.loading = false
	if err != nil {
		w.logger.Warn("availability fetch failed", "counselor_id", tag.counselorID, "error", err)
		w.suggestions = []availability.Slot{}
		w.notice = RetryNotice
		return
	}
	w.suggestions = availability.FindSlotsForDate(availability.SortSlots(raw), tag.date)
	if len(w.suggestions) == 0 {
		w.notice = NoAvailabilityNotice
	} else {
		w.notice = ""
	}
}

func (w *Workflow) isCurrentLocked(tag availabilityTag) bool {
	return tag.seq == w.seq &&
		w.draft.CounselorID != nil &&
		*w.draft.CounselorID == tag.counselorID &&
		w.draft.AppointmentDate == tag.date
}

func (w *Workflow) resetLocked() {
	w.seq++
	w.state = Browsing
	w.draft = Draft{}
	w.suggestions = nil
	w.loading = false
	w.notice = ""
	w.lastErr = nil
}

func (w *Workflow) findCounselorLocked(id int64) *api.Counselor {
	for i := range w.counselors {
		if w.counselors[i].ID == id {
			return &w.counselors[i]
		}
	}
	return nil
}

func (w *Workflow) findAppointmentLocked(id int64) int {
	for i, a := range w.appointments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// copySlots keeps the nil/empty distinction: nil means nothing was fetched.
func copySlots(in []availability.Slot) []availability.Slot {
	if in == nil {
		return nil
	}
	out := make([]availability.Slot, len(in))
	copy(out, in)
	return out
}

// clockTime trims a backend "HH:MM:SS" start time to "HH:MM".
func clockTime(t string) string {
	mins, ok := availability.ParseTimeToMinutes(t)
	if !ok {
		return t
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
