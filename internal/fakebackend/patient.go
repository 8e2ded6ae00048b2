package fakebackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

var errNoPatientProfile = fail(http.StatusBadRequest, "Patient profile not found")

func (s *Server) requirePatient(r *http.Request) (*user, *patient, error) {
	u, err := s.requireRole(r, api.RolePatient)
	if err != nil {
		return nil, nil, err
	}
	p := s.store.patients[u.id]
	if p == nil {
		return nil, nil, errNoPatientProfile
	}
	return u, p, nil
}

func (s *Server) listCounselors(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireRole(r, api.RolePatient); err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []api.Counselor{}
	for _, u := range s.store.usersSorted() {
		if u.role == api.RoleCounselor && u.active {
			out = append(out, api.Counselor{ID: u.id, Name: u.name, Email: u.email, Role: u.role, Specialty: u.specialty})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) counselorAvailability(w http.ResponseWriter, r *http.Request) {
	slots, err := s.lookupAvailability(r)
	s.respond(w, r, http.StatusOK, slotResponses(slots), err)
}

func (s *Server) lookupAvailability(r *http.Request) ([]*slot, error) {
	if _, err := s.requireRole(r, api.RolePatient); err != nil {
		return nil, err
	}
	id, err := pathID(r, "counselorID")
	if err != nil {
		return nil, err
	}
	c := s.store.users[id]
	if c == nil {
		return nil, fail(http.StatusNotFound, "Counselor not found")
	}
	if c.role != api.RoleCounselor {
		return nil, fail(http.StatusBadRequest, "User is not a counselor")
	}

	day := availability.InvalidWeekday
	if q := r.URL.Query().Get("dayOfWeek"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return nil, fail(http.StatusBadRequest, "dayOfWeek must be an integer")
		}
		day = availability.Weekday(n)
	}
	return s.store.slotsFor(c.id, day), nil
}

func (s *Server) upsertMood(w http.ResponseWriter, r *http.Request) {
	entry, err := s.saveMood(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, moodResponse(entry))
}

func (s *Server) saveMood(r *http.Request) (*moodEntry, error) {
	_, p, err := s.requirePatient(r)
	if err != nil {
		return nil, err
	}
	var req api.MoodRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.Rating < 1 || req.Rating > 10 {
		return nil, fail(http.StatusBadRequest, "Mood rating must be between 1 and 10")
	}
	date := strings.TrimSpace(req.EntryDate)
	if date == "" {
		date = availability.Today(s.now())
	} else if _, err := availability.DayOfWeekFromDate(date); err != nil {
		return nil, fail(http.StatusBadRequest, "entryDate must be YYYY-MM-DD")
	}

	entry := s.store.moodOn(p.userID, date)
	if entry == nil {
		entry = &moodEntry{id: s.store.newID(), patientID: p.userID, date: date}
		s.store.moods = append(s.store.moods, entry)
	}
	entry.rating = req.Rating
	entry.notes = req.Notes
	return entry, nil
}

func (s *Server) moodHistory(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requirePatient(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []api.MoodEntry{}
	for _, m := range s.store.moodsFor(p.userID) {
		out = append(out, moodResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) patientAppointment(a *appointment) api.Appointment {
	resp := api.Appointment{
		ID:              a.id,
		AppointmentDate: a.date,
		AppointmentTime: formatClock(a.time),
		Status:          a.status,
	}
	if c := s.store.users[a.counselorID]; c != nil {
		resp.Counselor = counselorSummary(c)
	}
	return resp
}

func (s *Server) patientAppointments(w http.ResponseWriter, r *http.Request) {
	_, p, err := s.requirePatient(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []api.Appointment{}
	for _, a := range s.store.appointmentsWhere(func(a *appointment) bool { return a.patientID == p.userID }) {
		out = append(out, s.patientAppointment(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// bookingBody keeps fields nullable so missing ones can be told apart from
// zero values.
type bookingBody struct {
	CounselorID     *int64  `json:"counselorId"`
	AppointmentDate *string `json:"appointmentDate"`
	AppointmentTime *string `json:"appointmentTime"`
}

func (s *Server) bookAppointment(w http.ResponseWriter, r *http.Request) {
	ap, err := s.createAppointment(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("appointment booked", "appointment_id", ap.id, "counselor_id", ap.counselorID)
	writeJSON(w, http.StatusCreated, s.patientAppointment(ap))
}

func (s *Server) createAppointment(r *http.Request) (*appointment, error) {
	_, p, err := s.requirePatient(r)
	if err != nil {
		return nil, err
	}
	var body bookingBody
	if err := decodeBody(r, &body); err != nil {
		return nil, err
	}
	if body.CounselorID == nil || body.AppointmentDate == nil || body.AppointmentTime == nil {
		return nil, fail(http.StatusBadRequest, "counselorId, appointmentDate and appointmentTime are required")
	}
	weekday, err := availability.DayOfWeekFromDate(*body.AppointmentDate)
	if err != nil {
		return nil, fail(http.StatusBadRequest, "appointmentDate must be YYYY-MM-DD")
	}
	minutes, ok := parseClock(*body.AppointmentTime)
	if !ok {
		return nil, fail(http.StatusBadRequest, "appointmentTime must be HH:MM")
	}
	c := s.store.users[*body.CounselorID]
	if c == nil {
		return nil, fail(http.StatusNotFound, "Counselor not found")
	}
	return s.book(bookingRequest{
		patient:   p,
		counselor: c,
		date:      strings.TrimSpace(*body.AppointmentDate),
		weekday:   weekday,
		minutes:   minutes,
	})
}

func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	ap, err := s.cancelOwn(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.patientAppointment(ap))
}

func (s *Server) cancelOwn(r *http.Request) (*appointment, error) {
	_, p, err := s.requirePatient(r)
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
	if ap.patientID != p.userID {
		return nil, errAccessDenied
	}
	if ap.status == api.StatusCanceled {
		return nil, fail(http.StatusBadRequest, "Appointment already canceled")
	}
	ap.status = api.StatusCanceled
	return ap, nil
}
