package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "MINDCARE_SESSION"

const sessionUserKey contextKey = "sessionUserID"

type contextKey string

var errSessionRevoked = errors.New("session revoked")

// Sessions issues and verifies HMAC-signed JWT session cookies. A token
// revoked by logout stays rejected until it would have expired anyway.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewSessions panics on an empty secret.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if secret == "" {
		panic("middleware: session secret required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// Issue signs a token for userID and sets it as an HttpOnly cookie.
func (s *Sessions) Issue(w http.ResponseWriter, userID int64) error {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(s.ttl),
	})
	return nil
}

// Revoke invalidates the request's token, if any, and clears the cookie.
func (s *Sessions) Revoke(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.parse(r); err == nil {
		exp := s.now().Add(s.ttl)
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
		s.mu.Lock()
		s.revoked[claims.ID] = exp
		s.pruneLocked()
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Middleware stores the session's user id in the request context. Requests
// without a valid session pass through anonymous; handlers decide whether
// that is an error.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.parse(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionUserKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionUserID returns the user id placed by Sessions.Middleware.
func SessionUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(sessionUserKey).(int64)
	return id, ok
}

func (s *Sessions) parse(r *http.Request) (*jwt.RegisteredClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, http.ErrNoCookie
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, errSessionRevoked
	}
	return claims, nil
}

func (s *Sessions) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}
