package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// LoginLimiter throttles credential attempts per client with a token bucket.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// NewLoginLimiter allows burst attempts at once, refilled at perMinute.
func NewLoginLimiter(perMinute float64, burst int) *LoginLimiter {
	if burst < 1 {
		burst = 1
	}
	return &LoginLimiter{
		buckets: make(map[string]*bucket),
		rate:    perMinute / 60,
		burst:   burst,
		now:     time.Now,
	}
}

// Allow takes one token for key. When empty it returns the wait until the
// next token.
func (l *LoginLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastTime: now}
		l.buckets[key] = b
	}
	b.tokens = math.Min(float64(l.burst), b.tokens+now.Sub(b.lastTime).Seconds()*l.rate)
	b.lastTime = now

	if b.tokens < 1 {
		if l.rate <= 0 {
			return false, time.Minute
		}
		wait := time.Duration((1 - b.tokens) / l.rate * float64(time.Second))
		return false, wait
	}
	b.tokens--
	return true, 0
}

// evictLocked drops buckets that have refilled completely.
func (l *LoginLimiter) evictLocked(now time.Time) {
	if l.rate <= 0 {
		return
	}
	full := time.Duration(float64(l.burst) / l.rate * float64(time.Second))
	for key, b := range l.buckets {
		if now.Sub(b.lastTime) > full {
			delete(l.buckets, key)
		}
	}
}

// Middleware rejects throttled requests with 429 and a JSON error envelope.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		// chi's RealIP middleware rewrites RemoteAddr; X-Real-Ip covers direct use.
		if xri := r.Header.Get("X-Real-Ip"); xri != "" {
			key = xri
		}
		ok, wait := l.Allow(key)
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Too many attempts. Try again later."})
			return
		}
		next.ServeHTTP(w, r)
	})
}
