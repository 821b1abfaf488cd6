package console

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/result"
)

// TokenSetter stores the session token. api.TokenStore implements it.
type TokenSetter interface {
	Set(token string) error
	Clear() error
}

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	LastLogin string `json:"lastLogin,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type LoginResult struct {
	Token string        `json:"token"`
	User  result.Record `json:"user"`
}

type AuthService struct {
	t      Transport
	tokens TokenSetter
}

// Login authenticates and stores the returned token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*api.Response[LoginResult], error) {
	resp, err := api.Invoke[LoginResult](ctx, s.t, http.MethodPost, "/auth/login", nil,
		map[string]any{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	if resp.Data.Token == "" {
		return resp, errors.New("login answer carries no token")
	}
	if s.tokens != nil {
		if err := s.tokens.Set(resp.Data.Token); err != nil {
			return resp, errors.Wrap(err, "store token")
		}
	}
	return resp, nil
}

// Logout tells the backend and clears the local token even when the call
// fails.
func (s *AuthService) Logout(ctx context.Context) (*Ack, error) {
	resp, err := ack(ctx, s.t, http.MethodPost, "/auth/logout", nil, nil)
	if s.tokens != nil {
		if cerr := s.tokens.Clear(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "clear token")
		}
	}
	return resp, err
}

func (s *AuthService) Me(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, "/auth/me", nil, nil)
}

// Refresh swaps the stored token for a fresh one.
func (s *AuthService) Refresh(ctx context.Context) (*api.Response[string], error) {
	resp, err := api.Invoke[struct {
		Token string `json:"token"`
	}](ctx, s.t, http.MethodPost, "/auth/refresh", nil, nil)
	if err != nil {
		return nil, err
	}
	out := &api.Response[string]{Code: resp.Code, Message: resp.Message, Data: resp.Data.Token}
	if s.tokens != nil && out.Data != "" {
		if err := s.tokens.Set(out.Data); err != nil {
			return out, errors.Wrap(err, "store token")
		}
	}
	return out, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, "/auth/password", nil, map[string]any{
		"old_password": oldPassword,
		"new_password": newPassword,
	})
}
