package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func issueCookie(t *testing.T, s *Sessions, userID int64) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := s.Issue(rec, userID); err != nil {
		t.Fatalf("issue: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Fatalf("expected one session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("expected HttpOnly cookie")
	}
	return cookies[0]
}

func sessionUser(s *Sessions, cookie *http.Cookie) (int64, bool) {
	var id int64
	var ok bool
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok = SessionUserID(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)
	return id, ok
}

func TestSessionsRoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	cookie := issueCookie(t, s, 42)

	id, ok := sessionUser(s, cookie)
	if !ok || id != 42 {
		t.Fatalf("expected user 42, got %d (ok=%v)", id, ok)
	}
}

func TestSessionsAnonymousWithoutCookie(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	if _, ok := sessionUser(s, nil); ok {
		t.Fatalf("expected anonymous request")
	}
}

func TestSessionsRejectsForeignSignature(t *testing.T) {
	other := NewSessions("other-secret", time.Hour)
	cookie := issueCookie(t, other, 7)

	s := NewSessions("secret", time.Hour)
	if _, ok := sessionUser(s, cookie); ok {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestSessionsRejectsExpiredToken(t *testing.T) {
	s := NewSessions("secret", time.Minute)
	start := time.Now()
	s.now = func() time.Time { return start }
	cookie := issueCookie(t, s, 7)

	s.now = func() time.Time { return start.Add(2 * time.Minute) }
	if _, ok := sessionUser(s, cookie); ok {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestSessionsRevoke(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	cookie := issueCookie(t, s, 9)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.Revoke(rec, req)

	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %v", cleared)
	}
	if _, ok := sessionUser(s, cookie); ok {
		t.Fatalf("expected revoked token to be rejected")
	}
}

func TestSessionsRejectsNonHMAC(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, ok := sessionUser(s, &http.Cookie{Name: SessionCookieName, Value: signed}); ok {
		t.Fatalf("expected unsigned token to be rejected")
	}
}
