package fakebackend

import (
	"sort"
	"strings"
	"time"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

const (
	createdAtLayout = "2006-01-02T15:04:05"
	clockLayout     = "15:04"
)

type user struct {
	id           int64
	email        string
	name         string
	role         api.Role
	active       bool
	passwordHash []byte
	specialty    string
	createdAt    time.Time
}

// patient shares its id with the owning user.
type patient struct {
	userID              int64
	emergencyContact    string
	assignedCounselorID int64
}

type slot struct {
	id          int64
	counselorID int64
	day         availability.Weekday
	start       int
	end         int
}

type moodEntry struct {
	id        int64
	patientID int64
	rating    int
	notes     string
	date      string
}

type appointment struct {
	id          int64
	patientID   int64
	counselorID int64
	date        string
	time        int
	status      api.AppointmentStatus
}

// store is the in-memory data set. Callers hold Server.mu.
type store struct {
	nextID int64

	users        map[int64]*user
	patients     map[int64]*patient
	slots        []*slot
	moods        []*moodEntry
	appointments []*appointment
}

func newStore() *store {
	return &store{
		users:    make(map[int64]*user),
		patients: make(map[int64]*patient),
	}
}

func (s *store) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) userByEmail(email string) *user {
	for _, u := range s.users {
		if u.email == email {
			return u
		}
	}
	return nil
}

// usersSorted returns every user by id.
func (s *store) usersSorted() []*user {
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (s *store) hasRole(role api.Role) bool {
	for _, u := range s.users {
		if u.role == role {
			return true
		}
	}
	return false
}

// slotsFor returns a counselor's slots by day then start time. day < 0
// means every day.
func (s *store) slotsFor(counselorID int64, day availability.Weekday) []*slot {
	var out []*slot
	for _, sl := range s.slots {
		if sl.counselorID != counselorID {
			continue
		}
		if day >= 0 && sl.day != day {
			continue
		}
		out = append(out, sl)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].day != out[j].day {
			return out[i].day < out[j].day
		}
		return out[i].start < out[j].start
	})
	return out
}

func (s *store) replaceSlots(counselorID int64, next []*slot) {
	kept := s.slots[:0]
	for _, sl := range s.slots {
		if sl.counselorID != counselorID {
			kept = append(kept, sl)
		}
	}
	s.slots = append(kept, next...)
}

func (s *store) moodsFor(patientID int64) []*moodEntry {
	var out []*moodEntry
	for _, m := range s.moods {
		if m.patientID == patientID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].date < out[j].date })
	return out
}

func (s *store) moodOn(patientID int64, date string) *moodEntry {
	for _, m := range s.moods {
		if m.patientID == patientID && m.date == date {
			return m
		}
	}
	return nil
}

func (s *store) appointmentByID(id int64) *appointment {
	for _, a := range s.appointments {
		if a.id == id {
			return a
		}
	}
	return nil
}

// appointmentsWhere returns matches ordered by date then time.
func (s *store) appointmentsWhere(match func(*appointment) bool) []*appointment {
	var out []*appointment
	for _, a := range s.appointments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].date != out[j].date {
			return out[i].date < out[j].date
		}
		return out[i].time < out[j].time
	})
	return out
}

func (s *store) deleteAppointmentsWhere(match func(*appointment) bool) {
	kept := s.appointments[:0]
	for _, a := range s.appointments {
		if !match(a) {
			kept = append(kept, a)
		}
	}
	s.appointments = kept
}

// deleteUser removes u and the records that hang off it.
func (s *store) deleteUser(u *user) {
	switch u.role {
	case api.RolePatient:
		if _, ok := s.patients[u.id]; ok {
			moods := s.moods[:0]
			for _, m := range s.moods {
				if m.patientID != u.id {
					moods = append(moods, m)
				}
			}
			s.moods = moods
			s.deleteAppointmentsWhere(func(a *appointment) bool { return a.patientID == u.id })
			delete(s.patients, u.id)
		}
	case api.RoleCounselor:
		s.deleteAppointmentsWhere(func(a *appointment) bool { return a.counselorID == u.id })
		s.replaceSlots(u.id, nil)
		for _, p := range s.patients {
			if p.assignedCounselorID == u.id {
				p.assignedCounselorID = 0
			}
		}
	}
	delete(s.users, u.id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseClock accepts "HH:MM" or "HH:MM:SS".
func parseClock(v string) (int, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{clockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

func formatClock(minutes int) string {
	return time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format(clockLayout)
}
