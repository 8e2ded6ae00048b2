// Package fakebackend is an in-memory MindCare backend for local
// development and integration tests. It serves the REST contract the client
// expects under /api and applies the same booking, availability and
// authorization rules as the production service.
package fakebackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/wolfman30/mindcare/internal/api"
	httpmw "github.com/wolfman30/mindcare/internal/http/middleware"
	"github.com/wolfman30/mindcare/pkg/logging"
)

// Config configures a Server.
type Config struct {
	Logger *logging.Logger
	// Secret signs session cookies.
	Secret     string
	SessionTTL time.Duration
	// PasswordCost is the bcrypt cost; tests use bcrypt.MinCost.
	PasswordCost int
	// CORSOrigins enables credentialed CORS for a browser client.
	CORSOrigins []string
	// LoginPerMinute throttles /auth/login per client. Zero disables it.
	LoginPerMinute float64
	Now            func() time.Time
}

// Server owns the data set. Every request runs under one mutex.
type Server struct {
	logger   *logging.Logger
	sessions *httpmw.Sessions
	cost     int
	cors     []string
	limiter  *httpmw.LoginLimiter
	now      func() time.Time
	rules    []bookingRule

	mu    sync.Mutex
	store *store
}

// New panics without a secret.
func New(cfg Config) *Server {
	if cfg.Secret == "" {
		panic("fakebackend: secret required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Server{
		logger:   cfg.Logger,
		sessions: httpmw.NewSessions(cfg.Secret, cfg.SessionTTL),
		cost:     cfg.PasswordCost,
		cors:     cfg.CORSOrigins,
		now:      cfg.Now,
		store:    newStore(),
	}
	if cfg.LoginPerMinute > 0 {
		s.limiter = httpmw.NewLoginLimiter(cfg.LoginPerMinute, 5)
	}
	s.rules = []bookingRule{
		counselorEligibility{},
		counselorAvailability{store: s.store},
		appointmentConflict{store: s.store},
	}
	return s
}

// Handler returns the router with every endpoint mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(httpmw.RequestLogger(s.logger))
	if len(s.cors) > 0 {
		r.Use(httpmw.CORS(s.cors))
	}
	r.Use(s.sessions.Middleware)
	r.Use(s.serialize)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			if s.limiter != nil {
				r.With(s.limiter.Middleware).Post("/login", s.login)
			} else {
				r.Post("/login", s.login)
			}
			r.Post("/logout", s.logout)
			r.Get("/me", s.me)
		})
		r.Route("/patient", func(r chi.Router) {
			r.Get("/counselors", s.listCounselors)
			r.Get("/counselors/{counselorID}/availability", s.counselorAvailability)
			r.Get("/mood", s.moodHistory)
			r.Post("/mood", s.upsertMood)
			r.Get("/appointments", s.patientAppointments)
			r.Post("/appointments", s.bookAppointment)
			r.Post("/appointments/{id}/cancel", s.cancelAppointment)
		})
		r.Route("/counselor", func(r chi.Router) {
			r.Get("/patients", s.myPatients)
			r.Get("/patients/{patientID}/mood", s.patientMood)
			r.Get("/appointments", s.counselorAppointments)
			r.Post("/appointments/{id}/status", s.updateAppointmentStatus)
			r.Get("/availability", s.myAvailability)
			r.Put("/availability", s.replaceAvailability)
		})
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", s.listUsers)
			r.Post("/counselors", s.createCounselor)
			r.Post("/users/{id}/role", s.changeRole)
			r.Post("/users/{id}/active", s.setActive)
			r.Delete("/users/{id}", s.deleteUser)
		})
		r.Route("/user", func(r chi.Router) {
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.updateProfile)
		})
	})
	return r
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// apiError is a handler failure rendered as {"error": msg}.
type apiError struct {
	status int
	msg    string
}

func (e *apiError) Error() string { return e.msg }

func fail(status int, msg string) error {
	return &apiError{status: status, msg: msg}
}

var (
	errNotAuthenticated = fail(http.StatusUnauthorized, "Not authenticated")
	errDeactivated      = fail(http.StatusForbidden, "Account is deactivated")
	errAccessDenied     = fail(http.StatusForbidden, "Access denied")
	errInvalidJSON      = fail(http.StatusBadRequest, "Invalid request body")
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apiError
	if !errors.As(err, &ae) {
		s.logger.Error("fake backend handler failed", "path", r.URL.Path, "error", err)
		ae = &apiError{status: http.StatusInternalServerError, msg: "Internal error"}
	}
	writeJSON(w, ae.status, map[string]string{"error": ae.msg})
}

// respond writes payload with status, or the error envelope when err is set.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, payload any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, payload)
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errInvalidJSON
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fail(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// currentUser returns the session user, or nil when anonymous or deleted.
func (s *Server) currentUser(r *http.Request) *user {
	id, ok := httpmw.SessionUserID(r.Context())
	if !ok {
		return nil
	}
	return s.store.users[id]
}

func (s *Server) requireLogin(r *http.Request) (*user, error) {
	u := s.currentUser(r)
	if u == nil {
		return nil, errNotAuthenticated
	}
	if !u.active {
		return nil, errDeactivated
	}
	return u, nil
}

func (s *Server) requireRole(r *http.Request, role api.Role) (*user, error) {
	u, err := s.requireLogin(r)
	if err != nil {
		return nil, err
	}
	if u.role != role {
		return nil, errAccessDenied
	}
	return u, nil
}

func (s *Server) hashPassword(pw string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pw), s.cost)
}

func userResponse(u *user) api.User {
	return api.User{
		ID:        u.id,
		Email:     u.email,
		Name:      u.name,
		Role:      u.role,
		Active:    u.active,
		CreatedAt: u.createdAt.Format(createdAtLayout),
	}
}

func userSummary(u *user) *api.UserSummary {
	return &api.UserSummary{ID: u.id, Name: u.name, Email: u.email, Role: u.role}
}

func counselorSummary(u *user) *api.UserSummary {
	sum := userSummary(u)
	sum.Specialty = u.specialty
	return sum
}

func moodResponse(m *moodEntry) api.MoodEntry {
	return api.MoodEntry{ID: m.id, Rating: m.rating, Notes: m.notes, EntryDate: m.date}
}

type slotResponse struct {
	ID        int64  `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func slotResponses(slots []*slot) []slotResponse {
	out := make([]slotResponse, 0, len(slots))
	for _, sl := range slots {
		out = append(out, slotResponse{
			ID:        sl.id,
			DayOfWeek: int(sl.day),
			StartTime: formatClock(sl.start),
			EndTime:   formatClock(sl.end),
		})
	}
	return out
}
