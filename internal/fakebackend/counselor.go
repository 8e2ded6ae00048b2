package fakebackend

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

// myPatients lists assigned patients first, then patients who booked with
// the counselor, each once.
func (s *Server) myPatients(w http.ResponseWriter, r *http.Request) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	seen := make(map[int64]bool)
	out := []api.PatientSummary{}
	add := func(p *patient) {
		if p == nil || seen[p.userID] {
			return
		}
		seen[p.userID] = true
		sum := api.PatientSummary{ID: p.userID, EmergencyContact: p.emergencyContact}
		if u := s.store.users[p.userID]; u != nil {
			sum.User = userSummary(u)
		}
		out = append(out, sum)
	}

	for _, u := range s.store.usersSorted() {
		if p := s.store.patients[u.id]; p != nil && p.assignedCounselorID == c.id {
			add(p)
		}
	}
	for _, a := range s.store.appointmentsWhere(func(a *appointment) bool { return a.counselorID == c.id }) {
		add(s.store.patients[a.patientID])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) patientMood(w http.ResponseWriter, r *http.Request) {
	entries, err := s.moodForCounselor(r)
	s.respond(w, r, http.StatusOK, entries, err)
}

// moodForCounselor requires a care relationship: the patient is assigned to
// the counselor or holds a non-canceled appointment with them.
func (s *Server) moodForCounselor(r *http.Request) ([]api.MoodEntry, error) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "patientID")
	if err != nil {
		return nil, err
	}
	p := s.store.patients[id]
	if p == nil {
		return nil, fail(http.StatusNotFound, "Patient not found")
	}

	related := p.assignedCounselorID == c.id
	if !related {
		related = len(s.store.appointmentsWhere(func(a *appointment) bool {
			return a.counselorID == c.id && a.patientID == p.userID && a.status != api.StatusCanceled
		})) > 0
	}
	if !related {
		return nil, errAccessDenied
	}

	out := []api.MoodEntry{}
	for _, m := range s.store.moodsFor(p.userID) {
		out = append(out, moodResponse(m))
	}
	return out, nil
}

func (s *Server) counselorAppointment(a *appointment) api.Appointment {
	resp := api.Appointment{
		ID:              a.id,
		AppointmentDate: a.date,
		AppointmentTime: formatClock(a.time),
		Status:          a.status,
		PatientID:       a.patientID,
	}
	if u := s.store.users[a.patientID]; u != nil {
		resp.Patient = userSummary(u)
	}
	return resp
}

func (s *Server) counselorAppointments(w http.ResponseWriter, r *http.Request) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []api.Appointment{}
	for _, a := range s.store.appointmentsWhere(func(a *appointment) bool { return a.counselorID == c.id }) {
		out = append(out, s.counselorAppointment(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) updateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	ap, err := s.setStatus(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.counselorAppointment(ap))
}

func (s *Server) setStatus(r *http.Request) (*appointment, error) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err != nil {
		return nil, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return nil, err
	}
	ap := s.store.appointmentByID(id)
	if ap == nil {
		return nil, fail(http.StatusNotFound, "Appointment not found")
	}
	if ap.counselorID != c.id {
		return nil, errAccessDenied
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body.Status) == "" {
		return nil, fail(http.StatusBadRequest, "status is required")
	}
	status := api.AppointmentStatus(strings.ToLower(strings.TrimSpace(body.Status)))
	if !status.Valid() {
		return nil, fail(http.StatusBadRequest, "Invalid status")
	}
	ap.status = status
	return ap, nil
}

func (s *Server) myAvailability(w http.ResponseWriter, r *http.Request) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slotResponses(s.store.slotsFor(c.id, availability.InvalidWeekday)))
}

// slotBody keeps fields nullable; a null list element is skipped.
type slotBody struct {
	DayOfWeek *int    `json:"dayOfWeek"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

func (s *Server) replaceAvailability(w http.ResponseWriter, r *http.Request) {
	c, err := s.requireRole(r, api.RoleCounselor)
	if err == nil {
		err = s.replaceSlots(r, c)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slotResponses(s.store.slotsFor(c.id, availability.InvalidWeekday)))
}

// replaceSlots validates the whole list before touching the stored slots, so
// a bad entry leaves the previous schedule in place.
func (s *Server) replaceSlots(r *http.Request, c *user) error {
	var body []*slotBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	next := make([]*slot, 0, len(body))
	for _, b := range body {
		if b == nil {
			continue
		}
		if b.DayOfWeek == nil || !availability.Weekday(*b.DayOfWeek).Valid() {
			return fail(http.StatusBadRequest, "dayOfWeek must be 0..6")
		}
		if b.StartTime == nil || b.EndTime == nil {
			return fail(http.StatusBadRequest, "Invalid time range")
		}
		start, okStart := parseClock(*b.StartTime)
		end, okEnd := parseClock(*b.EndTime)
		if !okStart || !okEnd || start >= end {
			return fail(http.StatusBadRequest, "Invalid time range")
		}
		next = append(next, &slot{
			id:          s.store.newID(),
			counselorID: c.id,
			day:         availability.Weekday(*b.DayOfWeek),
			start:       start,
			end:         end,
		})
	}
	s.store.replaceSlots(c.id, next)
	s.logger.Info("availability replaced", "counselor_id", c.id, "slots", len(next))
	return nil
}
