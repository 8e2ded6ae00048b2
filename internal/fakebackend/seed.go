package fakebackend

import (
	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/availability"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// EnsureAdmin creates the first admin account. It does nothing when any
// admin exists, when email is blank, or when the email is already taken.
func (s *Server) EnsureAdmin(email, password, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = normalizeEmail(email)
	if email == "" || s.store.hasRole(api.RoleAdmin) || s.store.userByEmail(email) != nil {
		return false, nil
	}
	u, err := s.addUser(email, password, name, api.RoleAdmin)
	if err != nil {
		return false, err
	}
	s.logger.Info("default admin created", "user_id", u.id)
	return true, nil
}

type seedSlot struct {
	day        availability.Weekday
	start, end string
}

// Seed loads two counselors with weekly hours and one patient assigned to
// the first of them. All accounts use DemoPassword.
func (s *Server) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	counselors := []struct {
		email, name, specialty string
		hours                  []seedSlot
	}{
		{
			email: "rivera@mindcare.test", name: "Dr. Ana Rivera", specialty: "Anxiety & stress",
			hours: []seedSlot{
				{availability.Monday, "09:00", "12:00"},
				{availability.Wednesday, "14:00", "17:00"},
				{availability.Friday, "10:00", "13:00"},
			},
		},
		{
			email: "okafor@mindcare.test", name: "Dr. Chidi Okafor", specialty: "Depression",
			hours: []seedSlot{
				{availability.Tuesday, "08:30", "11:30"},
				{availability.Thursday, "13:00", "18:00"},
			},
		},
	}

	var firstCounselor int64
	for _, c := range counselors {
		if s.store.userByEmail(c.email) != nil {
			continue
		}
		u, err := s.addUser(c.email, DemoPassword, c.name, api.RoleCounselor)
		if err != nil {
			return err
		}
		u.specialty = c.specialty
		if firstCounselor == 0 {
			firstCounselor = u.id
		}
		next := make([]*slot, 0, len(c.hours))
		for _, h := range c.hours {
			start, _ := parseClock(h.start)
			end, _ := parseClock(h.end)
			next = append(next, &slot{id: s.store.newID(), counselorID: u.id, day: h.day, start: start, end: end})
		}
		s.store.replaceSlots(u.id, next)
	}

	if s.store.userByEmail("sam@mindcare.test") == nil {
		req := api.RegisterRequest{
			Email:            "sam@mindcare.test",
			Password:         DemoPassword,
			Name:             "Sam Patel",
			EmergencyContact: "Jordan Patel 555-0100",
		}
		if firstCounselor != 0 {
			req.AssignedCounselorID = &firstCounselor
		}
		if _, err := s.createPatient(req); err != nil {
			return err
		}
	}
	s.logger.Info("fake backend seeded", "users", len(s.store.users))
	return nil
}
