package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	mgerrors "github.com/zan8in/moongazing/pkg/errors"
)

func TestClientBearerAndRequestID(t *testing.T) {
	var mu sync.Mutex
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get(HeaderRequestID)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"code":0,"message":"ok","data":{"name":"n1"}}`))
	}))
	defer srv.Close()

	store := NewTokenStore("")
	_ = store.Set("abc")
	c := NewClient(srv.URL+"/", ClientOptions{Tokens: store})

	resp, err := Invoke[map[string]any](context.Background(), c, http.MethodGet, "/x", nil, nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotAuth != "Bearer abc" {
		t.Fatalf("authorization mismatch: got=%q", gotAuth)
	}
	if gotID == "" {
		t.Fatalf("expected request id header")
	}
	if resp.Data["name"] != "n1" || resp.Message != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	mu.Unlock()
	_, err = Invoke[map[string]any](WithToken(context.Background(), "override"), c, http.MethodGet, "/x", nil, nil)
	mu.Lock()
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if gotAuth != "Bearer override" {
		t.Fatalf("context token must win: got=%q", gotAuth)
	}
}

func TestClientNoTokenNoHeader(t *testing.T) {
	var seen atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["Authorization"]
		seen.Store(ok)
		_, _ = w.Write([]byte(`{"code":0,"message":"ok","data":null}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ClientOptions{})
	if _, err := c.Call(context.Background(), http.MethodGet, "/x", nil, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if seen.Load() {
		t.Fatalf("authorization header must be absent without a token")
	}
}

func TestClientUnauthorizedTeardown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":401,"message":"token expired"}`))
	}))
	defer srv.Close()

	store := NewTokenStore(filepath.Join(t.TempDir(), "token"))
	if err := store.Set("stale"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	var calls int32
	c := NewClient(srv.URL, ClientOptions{
		Tokens:         store,
		OnUnauthorized: func() { atomic.AddInt32(&calls, 1) },
	})

	_, err := c.Call(context.Background(), http.MethodGet, "/auth/me", nil, nil)
	if !mgerrors.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if store.Token() != "" {
		t.Fatalf("token must be cleared")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("callback count mismatch: got=%d want=1", got)
	}

	reloaded := NewTokenStore(store.path)
	_ = reloaded.Load()
	if reloaded.Token() != "" {
		t.Fatalf("persisted token must be removed")
	}
}

func TestClientErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":500,"message":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ClientOptions{})
	_, err := c.Call(context.Background(), http.MethodGet, "/x", nil, nil)
	if got := mgerrors.StatusOf(err); got != http.StatusInternalServerError {
		t.Fatalf("status mismatch: got=%d err=%v", got, err)
	}
	if mgerrors.IsUnauthorized(err) {
		t.Fatalf("500 must not be unauthorized")
	}
}

func TestClientEnvelopePagingPresence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"message":"ok","data":[],"total":0,"page":3}`))
	}))
	defer srv.Close()

	env, err := NewClient(srv.URL, ClientOptions{}).Call(context.Background(), http.MethodGet, "/x", nil, nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if env.Total == nil || *env.Total != 0 {
		t.Fatalf("present zero total must be kept")
	}
	if env.Page == nil || *env.Page != 3 {
		t.Fatalf("page mismatch")
	}
	if env.Size != nil {
		t.Fatalf("absent size must stay nil")
	}
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ClientOptions{Timeout: 20 * time.Millisecond})
	if _, err := c.Call(context.Background(), http.MethodGet, "/slow", nil, nil); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestClientDownloadAndUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/export":
			_, _ = w.Write([]byte("a,b\n1,2\n"))
		case "/import":
			f, h, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			b, _ := io.ReadAll(f)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code": 0, "message": "ok",
				"data": map[string]any{"name": h.Filename, "size": len(b), "group": r.FormValue("group_id")},
			})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, ClientOptions{})
	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "/export", nil, &buf)
	if err != nil || n != 8 || buf.String() != "a,b\n1,2\n" {
		t.Fatalf("download mismatch: n=%d err=%v body=%q", n, err, buf.String())
	}

	env, err := c.Upload(context.Background(), "/import", "file", "assets.csv", strings.NewReader("x"), map[string]string{"group_id": "g1"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var data struct {
		Name  string `json:"name"`
		Size  int    `json:"size"`
		Group string `json:"group"`
	}
	if err := env.Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Name != "assets.csv" || data.Size != 1 || data.Group != "g1" {
		t.Fatalf("unexpected upload echo: %+v", data)
	}
}

func TestTokenStoreClaims(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	store := NewTokenStore("")
	_ = store.Set(signed)

	c, err := store.Claims()
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if c.Subject != "u1" {
		t.Fatalf("subject mismatch: %q", c.Subject)
	}
	if !store.Expired(time.Now()) {
		t.Fatalf("expected token to be expired")
	}

	_ = store.Set("opaque-token")
	if store.Expired(time.Now()) {
		t.Fatalf("opaque tokens never expire client-side")
	}
}
