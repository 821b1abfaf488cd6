package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

func toUser(m result.Record) User {
	status := "disabled"
	if result.Int64(m["status"]) == 1 {
		status = "active"
	}
	return User{
		ID:        result.String(m["id"]),
		Username:  result.String(m["username"]),
		Email:     result.String(m["email"]),
		Phone:     result.String(m["phone"]),
		Role:      result.String(m["role"]),
		Status:    status,
		LastLogin: result.String(m["last_login"]),
		CreatedAt: result.String(m["created_at"]),
	}
}

type UserService struct {
	t Transport
}

var usersEndpoint = pagination.Endpoint{Path: "/users", DefaultPageSize: 10}

func (s *UserService) List(ctx context.Context, q PageQuery) (*api.Response[pagination.Page[User]], error) {
	return pagination.Fetch(ctx, s.t, usersEndpoint, q.query(), toUser)
}

func (s *UserService) Get(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, pathf("/users/%s", id), nil, nil)
}

func (s *UserService) Create(ctx context.Context, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, "/users", nil, fields)
}

func (s *UserService) Update(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/users/%s", id), nil, fields)
}

func (s *UserService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/users/%s", id), nil, nil)
}

func (s *UserService) ResetPassword(ctx context.Context, id, password string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/users/%s/password", id), nil, map[string]any{"password": password})
}
