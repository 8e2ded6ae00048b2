package fakebackend

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
)

func (s *Server) profileResponse(u *user) api.Profile {
	resp := api.Profile{
		ID:        u.id,
		Email:     u.email,
		Name:      u.name,
		Role:      u.role,
		Specialty: u.specialty,
	}
	if u.role == api.RolePatient {
		if p := s.store.patients[u.id]; p != nil {
			resp.EmergencyContact = p.emergencyContact
		}
	}
	return resp
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.requireLogin(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.profileResponse(u))
}

type profileBody struct {
	Name             *string `json:"name"`
	Specialty        *string `json:"specialty"`
	EmergencyContact *string `json:"emergencyContact"`
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.applyProfile(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.profileResponse(u))
}

// applyProfile changes only what the role owns: the name for everyone,
// the specialty for counselors, the emergency contact for patients. A blank
// name is ignored; a blank specialty or contact clears it.
func (s *Server) applyProfile(r *http.Request) (*user, error) {
	u, err := s.requireLogin(r)
	if err != nil {
		return nil, err
	}
	var body profileBody
	if err := decodeBody(r, &body); err != nil {
		return nil, fail(http.StatusBadRequest, "Request body is required")
	}

	changed := false
	if body.Name != nil {
		if name := strings.TrimSpace(*body.Name); name != "" && name != u.name {
			u.name = name
			changed = true
		}
	}
	if u.role == api.RoleCounselor && body.Specialty != nil {
		if spec := strings.TrimSpace(*body.Specialty); spec != u.specialty {
			u.specialty = spec
			changed = true
		}
	}
	if u.role == api.RolePatient && body.EmergencyContact != nil {
		p := s.store.patients[u.id]
		if p == nil {
			return nil, errNoPatientProfile
		}
		if contact := strings.TrimSpace(*body.EmergencyContact); contact != p.emergencyContact {
			p.emergencyContact = contact
			changed = true
		}
	}
	if changed {
		s.logger.Info("profile updated", "user_id", u.id, "role", string(u.role))
	}
	return u, nil
}
