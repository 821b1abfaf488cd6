package console

import (
	"context"
	"net/http"
	"testing"
)

func TestLoginStoresTokenAndLogoutClears(t *testing.T) {
	var lastAuth string
	c, store := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		lastAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/auth/login":
			body := readBody(t, r)
			if body["username"] != "admin" || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"token": "tok-1", "user": map[string]any{"id": "u1"}}})
		case "/auth/me":
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "u1", "username": "admin"}})
		case "/auth/refresh":
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"token": "tok-2"}})
		case "/auth/logout":
			writeJSON(w, map[string]any{"code": 0, "message": "ok"})
		}
	})
	ctx := context.Background()

	resp, err := c.Auth.Login(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.Token() != "tok-1" || resp.Data.User["id"] != "u1" {
		t.Fatalf("login mismatch: token=%q resp=%+v", store.Token(), resp.Data)
	}

	me, err := c.Auth.Me(ctx)
	if err != nil || me.Data["username"] != "admin" {
		t.Fatalf("me mismatch: %+v err=%v", me, err)
	}
	if lastAuth != "Bearer tok-1" {
		t.Fatalf("bearer mismatch: %q", lastAuth)
	}

	if _, err := c.Auth.Refresh(ctx); err != nil || store.Token() != "tok-2" {
		t.Fatalf("refresh mismatch: token=%q err=%v", store.Token(), err)
	}

	if _, err := c.Auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.Token() != "" {
		t.Fatalf("logout must clear the token")
	}
}

func TestLoginRejected(t *testing.T) {
	c, store := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":401,"message":"bad credentials"}`))
	})
	if _, err := c.Auth.Login(context.Background(), "admin", "nope"); err == nil {
		t.Fatalf("expected login failure")
	}
	if store.Token() != "" {
		t.Fatalf("no token must be stored")
	}
}

func TestChangePasswordPayload(t *testing.T) {
	var body map[string]any
	var method string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		body = readBody(t, r)
		writeJSON(w, map[string]any{"code": 0, "message": "ok"})
	})
	if _, err := c.Auth.ChangePassword(context.Background(), "a", "b"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if method != http.MethodPut || body["old_password"] != "a" || body["new_password"] != "b" {
		t.Fatalf("payload mismatch: %s %#v", method, body)
	}
}

func TestUsersStatusMapping(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{
			map[string]any{"id": "u1", "status": 1},
			map[string]any{"id": "u2", "status": 0},
			map[string]any{"id": "u3", "status": 2},
		}, "total": 3})
	})
	resp, err := c.Users.List(context.Background(), PageQuery{Search: "ad"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if q != "keyword=ad&page=1&page_size=10" {
		t.Fatalf("query mismatch: %q", q)
	}
	got := []string{resp.Data.List[0].Status, resp.Data.List[1].Status, resp.Data.List[2].Status}
	if got[0] != "active" || got[1] != "disabled" || got[2] != "disabled" {
		t.Fatalf("status mapping mismatch: %v", got)
	}
}
