package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wolfman30/mindcare/internal/availability"
)

// MyAvailability returns the signed-in counselor's weekly slots in wire form.
func (c *Client) MyAvailability(ctx context.Context) ([]availability.RawSlot, error) {
	var out []availability.RawSlot
	if err := c.Do(ctx, http.MethodGet, "/counselor/availability", nil, &out); err != nil {
		return nil, fmt.Errorf("get my availability: %w", err)
	}
	return out, nil
}

// ReplaceAvailability overwrites the counselor's whole schedule with slots
// and returns what the backend stored.
func (c *Client) ReplaceAvailability(ctx context.Context, slots []availability.Slot) ([]availability.RawSlot, error) {
	if slots == nil {
		slots = []availability.Slot{}
	}
	var out []availability.RawSlot
	if err := c.Do(ctx, http.MethodPut, "/counselor/availability", slots, &out); err != nil {
		return nil, fmt.Errorf("replace availability: %w", err)
	}
	return out, nil
}

// MyPatients lists assigned patients first, then patients who booked.
func (c *Client) MyPatients(ctx context.Context) ([]PatientSummary, error) {
	var out []PatientSummary
	if err := c.Do(ctx, http.MethodGet, "/counselor/patients", nil, &out); err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return out, nil
}

// PatientMood returns a patient's mood history when a care relationship exists.
func (c *Client) PatientMood(ctx context.Context, patientID int64) ([]MoodEntry, error) {
	var out []MoodEntry
	path := fmt.Sprintf("/counselor/patients/%d/mood", patientID)
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get patient mood: %w", err)
	}
	return out, nil
}

// CounselorAppointments returns the counselor's appointments.
func (c *Client) CounselorAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.Do(ctx, http.MethodGet, "/counselor/appointments", nil, &out); err != nil {
		return nil, fmt.Errorf("list counselor appointments: %w", err)
	}
	return out, nil
}

// SetAppointmentStatus moves an appointment to status.
func (c *Client) SetAppointmentStatus(ctx context.Context, id int64, status AppointmentStatus) (*Appointment, error) {
	body := struct {
		Status AppointmentStatus `json:"status"`
	}{Status: status}

	var out Appointment
	path := fmt.Sprintf("/counselor/appointments/%d/status", id)
	if err := c.Do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("set appointment status: %w", err)
	}
	return &out, nil
}
