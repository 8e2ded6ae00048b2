package api

import (
	"strconv"
	"strings"
)

// Role is a user's account type.
type Role string

const (
	RolePatient   Role = "patient"
	RoleCounselor Role = "counselor"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleCounselor, RoleAdmin:
		return true
	}
	return false
}

// AppointmentStatus is backend-owned; the client only reads it.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

// Me is the session snapshot returned by GET /auth/me.
type Me struct {
	Authenticated bool   `json:"authenticated"`
	ID            int64  `json:"id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          Role   `json:"role,omitempty"`
	Active        bool   `json:"active,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// Anonymous is the snapshot used when no session exists or /auth/me failed.
func Anonymous() *Me {
	return &Me{Authenticated: false}
}

// HasRole reports whether m is an authenticated session with role r.
func (m *Me) HasRole(r Role) bool {
	return m != nil && m.Authenticated && m.Role == r
}

// DisplayName prefers the name and falls back to the email.
func (m *Me) DisplayName() string {
	if m == nil {
		return ""
	}
	return displayName(m.Name, m.Email)
}

// UserSummary is the compact user projection nested in other resources.
type UserSummary struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

// DisplayName prefers the name and falls back to the email.
func (u UserSummary) DisplayName() string { return displayName(u.Name, u.Email) }

// Counselor is an entry in the patient's counselor directory.
type Counselor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role,omitempty"`
	Specialty string `json:"specialty,omitempty"`
}

// DisplayName prefers the name and falls back to the email.
func (c Counselor) DisplayName() string { return displayName(c.Name, c.Email) }

// Appointment is a read-only projection. Patients see Counselor, counselors
// see Patient and PatientID.
type Appointment struct {
	ID              int64             `json:"id"`
	AppointmentDate string            `json:"appointmentDate"`
	AppointmentTime string            `json:"appointmentTime"`
	Status          AppointmentStatus `json:"status"`
	PatientID       int64             `json:"patientId,omitempty"`
	Counselor       *UserSummary      `json:"counselor,omitempty"`
	Patient         *UserSummary      `json:"patient,omitempty"`
}

// IsCanceled reports whether the appointment is canceled.
func (a Appointment) IsCanceled() bool {
	return strings.EqualFold(string(a.Status), string(StatusCanceled))
}

// BookingRequest is the body of POST /patient/appointments.
type BookingRequest struct {
	CounselorID     int64  `json:"counselorId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}

// MoodEntry is one daily mood log.
type MoodEntry struct {
	ID        int64  `json:"id"`
	Rating    int    `json:"rating"`
	Notes     string `json:"notes"`
	EntryDate string `json:"entryDate"`
}

// MoodRequest upserts the entry for EntryDate (today when empty).
type MoodRequest struct {
	Rating    int    `json:"rating"`
	Notes     string `json:"notes,omitempty"`
	EntryDate string `json:"entryDate,omitempty"`
}

// User is the account view returned by auth and admin endpoints.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// DisplayName prefers the name and falls back to the email.
func (u User) DisplayName() string { return displayName(u.Name, u.Email) }

// PatientSummary is an entry in a counselor's patient list.
type PatientSummary struct {
	ID               int64        `json:"id"`
	User             *UserSummary `json:"user,omitempty"`
	EmergencyContact string       `json:"emergencyContact,omitempty"`
}

// DisplayName returns the nested user's name, or "Patient #<id>".
func (p PatientSummary) DisplayName() string {
	if p.User != nil {
		if n := p.User.DisplayName(); n != "" {
			return n
		}
	}
	return "Patient #" + strconv.FormatInt(p.ID, 10)
}

// Profile is GET/PUT /user/profile.
type Profile struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	Specialty        string `json:"specialty,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
}

// ProfileUpdate is the PUT /user/profile body. Nil fields are left unchanged;
// an empty Specialty or EmergencyContact clears it.
type ProfileUpdate struct {
	Name             string  `json:"name,omitempty"`
	Specialty        *string `json:"specialty,omitempty"`
	EmergencyContact *string `json:"emergencyContact,omitempty"`
}

// LoginRequest is the POST /auth/login body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the POST /auth/register body. Only patients may
// self-register.
type RegisterRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	Name                string `json:"name,omitempty"`
	Role                Role   `json:"role,omitempty"`
	EmergencyContact    string `json:"emergencyContact,omitempty"`
	AssignedCounselorID *int64 `json:"assignedCounselorId,omitempty"`
}

// CreateCounselorRequest is the POST /admin/counselors body.
type CreateCounselorRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func displayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return email
}
