package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"
)

const HeaderRequestID = "X-Request-Id"

// Middleware wraps the transport of the client. Chains are built once, at
// construction.
type Middleware func(http.RoundTripper) http.RoundTripper

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain applies mws so that mws[0] sees the request first.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			rt = mws[i](rt)
		}
	}
	return rt
}

type ctxKey string

const ctxToken ctxKey = "token"

// WithToken overrides the bearer token for requests made with ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxToken, token)
}

func tokenFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ctxToken).(string)
	return t, ok
}

func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) == "" {
				r = r.Clone(r.Context())
				r.Header.Set(HeaderRequestID, xid.New().String())
			}
			return next.RoundTrip(r)
		})
	}
}

// BearerAuth adds "Authorization: Bearer <token>". A token placed on the
// request context wins over the source.
func BearerAuth(src TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			token, ok := tokenFrom(r.Context())
			if !ok && src != nil {
				token = src.Token()
			}
			if token = strings.TrimSpace(token); token != "" {
				r = r.Clone(r.Context())
				r.Header.Set("Authorization", "Bearer "+token)
			}
			return next.RoundTrip(r)
		})
	}
}

func AccessLog(l *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			res, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", r.Header.Get(HeaderRequestID)),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				l.Warn("request failed", append(fields, zap.Error(err))...)
				return nil, err
			}
			l.Info("request", append(fields, zap.Int("status", res.StatusCode))...)
			return res, nil
		})
	}
}

// Unauthorized tears the session down on a 401: the token is cleared and
// onUnauthorized runs. The response itself is passed on unchanged.
func Unauthorized(src TokenSource, onUnauthorized func()) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			res, err := next.RoundTrip(r)
			if err != nil || res.StatusCode != http.StatusUnauthorized {
				return res, err
			}
			// A request carrying its own token does not own the shared session.
			if _, override := tokenFrom(r.Context()); override {
				return res, nil
			}
			if c, ok := src.(TokenClearer); ok {
				_ = c.Clear()
			}
			if onUnauthorized != nil {
				onUnauthorized()
			}
			return res, nil
		})
	}
}
