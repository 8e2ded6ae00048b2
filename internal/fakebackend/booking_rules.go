package fakebackend

import (
	"net/http"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

type bookingRequest struct {
	patient   *patient
	counselor *user
	date      string
	weekday   availability.Weekday
	minutes   int
}

// bookingRule rejects a booking with an API error. Rules run in order and
// the first failure wins.
type bookingRule interface {
	validate(req bookingRequest) error
}

type counselorEligibility struct{}

func (counselorEligibility) validate(req bookingRequest) error {
	if req.counselor.role != api.RoleCounselor {
		return fail(http.StatusBadRequest, "Selected user is not a counselor")
	}
	if !req.counselor.active {
		return fail(http.StatusBadRequest, "Counselor account is deactivated")
	}
	return nil
}

// counselorAvailability requires start <= t < end within a slot on the
// date's weekday.
type counselorAvailability struct {
	store *store
}

func (r counselorAvailability) validate(req bookingRequest) error {
	for _, sl := range r.store.slotsFor(req.counselor.id, req.weekday) {
		if req.minutes >= sl.start && req.minutes < sl.end {
			return nil
		}
	}
	return fail(http.StatusBadRequest, "Counselor not available at selected time")
}

// appointmentConflict allows one live appointment per counselor, date and
// time. Canceled appointments free the slot.
type appointmentConflict struct {
	store *store
}

func (r appointmentConflict) validate(req bookingRequest) error {
	for _, a := range r.store.appointments {
		if a.counselorID == req.counselor.id &&
			a.date == req.date &&
			a.time == req.minutes &&
			a.status != api.StatusCanceled {
			return fail(http.StatusBadRequest, "Time slot already booked")
		}
	}
	return nil
}

func (s *Server) book(req bookingRequest) (*appointment, error) {
	for _, rule := range s.rules {
		if err := rule.validate(req); err != nil {
			return nil, err
		}
	}
	ap := &appointment{
		id:          s.store.newID(),
		patientID:   req.patient.userID,
		counselorID: req.counselor.id,
		date:        req.date,
		time:        req.minutes,
		status:      api.StatusScheduled,
	}
	s.store.appointments = append(s.store.appointments, ap)
	return ap, nil
}
