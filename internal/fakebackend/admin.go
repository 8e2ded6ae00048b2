package fakebackend

import (
	"net/http"
	"strings"

	"github.com/wolfman30/mindcare/internal/api"
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireRole(r, api.RoleAdmin); err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []api.User{}
	for _, u := range s.store.usersSorted() {
		out = append(out, userResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCounselor(w http.ResponseWriter, r *http.Request) {
	u, err := s.newCounselor(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("counselor created", "user_id", u.id)
	writeJSON(w, http.StatusOK, userResponse(u))
}

func (s *Server) newCounselor(r *http.Request) (*user, error) {
	if _, err := s.requireRole(r, api.RoleAdmin); err != nil {
		return nil, err
	}
	var req api.CreateCounselorRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	return s.addUser(req.Email, req.Password, req.Name, api.RoleCounselor)
}

// addUser creates an active account without a patient profile.
func (s *Server) addUser(email, password, name string, role api.Role) (*user, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, fail(http.StatusBadRequest, "Email and password are required")
	}
	email = normalizeEmail(email)
	if s.store.userByEmail(email) != nil {
		return nil, fail(http.StatusConflict, "Email already registered")
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user{
		id:           s.store.newID(),
		email:        email,
		name:         name,
		role:         role,
		active:       true,
		passwordHash: hash,
		createdAt:    s.now(),
	}
	s.store.users[u.id] = u
	return u, nil
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	u, err := s.updateUser(r, func(body map[string]any) (func(*user), error) {
		role, _ := body["role"].(string)
		if role == "" {
			return nil, fail(http.StatusBadRequest, "role is required")
		}
		if !api.Role(role).Valid() {
			return nil, fail(http.StatusBadRequest, "Invalid role")
		}
		return func(u *user) {
			u.role = api.Role(role)
			if u.role == api.RolePatient && s.store.patients[u.id] == nil {
				s.store.patients[u.id] = &patient{userID: u.id}
			}
		}, nil
	})
	s.respond(w, r, http.StatusOK, userResponse(u), err)
}

func (s *Server) setActive(w http.ResponseWriter, r *http.Request) {
	u, err := s.updateUser(r, func(body map[string]any) (func(*user), error) {
		active, ok := body["active"].(bool)
		if !ok {
			return nil, fail(http.StatusBadRequest, "active is required")
		}
		return func(u *user) { u.active = active }, nil
	})
	s.respond(w, r, http.StatusOK, userResponse(u), err)
}

// updateUser validates the body with parse before looking up the path user,
// then applies the returned change. The result is a copy, and an empty user
// on error so the caller can render unconditionally.
func (s *Server) updateUser(r *http.Request, parse func(body map[string]any) (func(*user), error)) (*user, error) {
	if _, err := s.requireRole(r, api.RoleAdmin); err != nil {
		return &user{}, err
	}
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		return &user{}, err
	}
	apply, err := parse(body)
	if err != nil {
		return &user{}, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return &user{}, err
	}
	u := s.store.users[id]
	if u == nil {
		return &user{}, fail(http.StatusNotFound, "User not found")
	}
	apply(u)
	cp := *u
	return &cp, nil
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.removeUser(r)
	s.respond(w, r, http.StatusOK, map[string]bool{"ok": true}, err)
}

func (s *Server) removeUser(r *http.Request) error {
	if _, err := s.requireRole(r, api.RoleAdmin); err != nil {
		return err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	u := s.store.users[id]
	if u == nil {
		return fail(http.StatusNotFound, "User not found")
	}
	s.store.deleteUser(u)
	s.logger.Info("user deleted", "user_id", id, "role", string(u.role))
	return nil
}
