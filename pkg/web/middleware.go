package web

import (
	"bufio"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/api"
	"go.uber.org/zap"
)

func secureHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), camera=(), microphone=()")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack keeps /ws upgrades working behind the recorder.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("gateway",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("ip", getClientIP(r)),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// authMiddleware forwards the caller's bearer token to the backend on
// the request context.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		token, err := bearerToken(r)
		if err == nil {
			err = checkExpiry(token, time.Now())
		}
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, api.Response[any]{Code: http.StatusUnauthorized, Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(api.WithToken(r.Context(), token)))
	})
}

// loginLimiter is a sliding window over login attempts per client IP.
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	maxTries int
}

func newLoginLimiter(window time.Duration, maxTries int) *loginLimiter {
	return &loginLimiter{attempts: make(map[string][]time.Time), window: window, maxTries: maxTries}
}

func (l *loginLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	var recent []time.Time
	for _, t := range l.attempts[ip] {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.maxTries {
		l.attempts[ip] = recent
		return false
	}
	l.attempts[ip] = append(recent, now)
	return true
}

func (l *loginLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(getClientIP(r), time.Now()) {
			writeJSON(w, http.StatusTooManyRequests, api.Response[any]{Code: http.StatusTooManyRequests, Message: "too many login attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
