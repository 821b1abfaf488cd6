package api

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/zan8in/fileutil"
)

type TokenSource interface {
	Token() string
}

type TokenClearer interface {
	Clear() error
}

// TokenStore holds the session token. With a path it is persisted, so
// separate CLI runs share one login.
type TokenStore struct {
	mu    sync.RWMutex
	token string
	path  string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: strings.TrimSpace(path)}
}

// StaticToken is a TokenSource that never changes.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Load reads the persisted token. A missing file is not an error.
func (s *TokenStore) Load() error {
	if s.path == "" || !fileutil.FileExists(s.path) {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrap(err, "read token file")
	}
	s.mu.Lock()
	s.token = strings.TrimSpace(string(b))
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return errors.Wrap(err, "create token dir")
	}
	return errors.Wrap(os.WriteFile(s.path, []byte(token), 0600), "write token file")
}

func (s *TokenStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove token file")
	}
	return nil
}

// Claims decodes the token's registered claims without verifying the
// signature; the backend remains the authority.
func (s *TokenStore) Claims() (*jwt.RegisteredClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, errors.New("no token")
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	return claims, nil
}

// Expired reports whether the token carries an exp claim in the past.
// Opaque tokens and tokens without exp never expire client-side.
func (s *TokenStore) Expired(now time.Time) bool {
	c, err := s.Claims()
	if err != nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}
