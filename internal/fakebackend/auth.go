package fakebackend

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/mindcare/internal/api"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.createPatient(req)
	if err == nil {
		err = s.sessions.Issue(w, created.id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("patient registered", "user_id", created.id)
	writeJSON(w, http.StatusCreated, userResponse(created))
}

func (s *Server) createPatient(req api.RegisterRequest) (*user, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, fail(http.StatusBadRequest, "Email and password are required")
	}
	if req.Role != "" && req.Role != api.RolePatient {
		return nil, fail(http.StatusForbidden, "Only patients can register. Counselors are created by admin.")
	}
	email := normalizeEmail(req.Email)
	if s.store.userByEmail(email) != nil {
		return nil, fail(http.StatusConflict, "Email already registered")
	}

	var assigned int64
	if req.AssignedCounselorID != nil {
		c := s.store.users[*req.AssignedCounselorID]
		if c == nil {
			return nil, fail(http.StatusBadRequest, "Assigned counselor not found")
		}
		if c.role != api.RoleCounselor {
			return nil, fail(http.StatusBadRequest, "Assigned counselor must have role=counselor")
		}
		assigned = c.id
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &user{
		id:           s.store.newID(),
		email:        email,
		name:         req.Name,
		role:         api.RolePatient,
		active:       true,
		passwordHash: hash,
		createdAt:    s.now(),
	}
	s.store.users[u.id] = u
	s.store.patients[u.id] = &patient{
		userID:              u.id,
		emergencyContact:    req.EmergencyContact,
		assignedCounselorID: assigned,
	}
	return u, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	u, err := s.authenticate(req)
	if err == nil {
		err = s.sessions.Issue(w, u.id)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse(u))
}

// authenticate checks the active flag before the password, so a deactivated
// account is reported as such even with a wrong password.
func (s *Server) authenticate(req api.LoginRequest) (*user, error) {
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		return nil, fail(http.StatusBadRequest, "Email and password are required")
	}
	u := s.store.userByEmail(normalizeEmail(req.Email))
	if u == nil {
		return nil, fail(http.StatusUnauthorized, "Invalid credentials")
	}
	if !u.active {
		return nil, errDeactivated
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		return nil, fail(http.StatusUnauthorized, "Invalid credentials")
	}
	return u, nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Revoke(w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)
	if u == nil {
		writeJSON(w, http.StatusOK, api.Anonymous())
		return
	}
	resp := userResponse(u)
	writeJSON(w, http.StatusOK, api.Me{
		Authenticated: true,
		ID:            resp.ID,
		Email:         resp.Email,
		Name:          resp.Name,
		Role:          resp.Role,
		Active:        resp.Active,
		CreatedAt:     resp.CreatedAt,
	})
}
