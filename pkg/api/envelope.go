package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"github.com/pkg/errors"
)

// Envelope is the backend response wrapper. The paging fields are pointers
// so a missing key can be told apart from a zero.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   *int64          `json:"total,omitempty"`
	Page    *int            `json:"page,omitempty"`
	Size    *int            `json:"size,omitempty"`
}

// HasData reports whether data is present and not null.
func (e *Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Decode unmarshals data into v. Absent or null data leaves v untouched.
func (e *Envelope) Decode(v any) error {
	if !e.HasData() {
		return nil
	}
	return errors.Wrap(json.Unmarshal(e.Data, v), "decode envelope data")
}

// Response is the envelope with typed data, as handed to callers.
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Invoke calls path and decodes the data of the answer into T.
func Invoke[T any](ctx context.Context, c Caller, method, path string, query url.Values, body any) (*Response[T], error) {
	env, err := c.Call(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	resp := &Response[T]{Code: env.Code, Message: env.Message}
	if err := env.Decode(&resp.Data); err != nil {
		return nil, err
	}
	return resp, nil
}

// Map calls path and passes the decoded data object through fn.
func Map[T any](ctx context.Context, c Caller, method, path string, query url.Values, body any, fn func(map[string]any) T) (*Response[T], error) {
	raw, err := Invoke[map[string]any](ctx, c, method, path, query, body)
	if err != nil {
		return nil, err
	}
	return &Response[T]{Code: raw.Code, Message: raw.Message, Data: fn(raw.Data)}, nil
}
