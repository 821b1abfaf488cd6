package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotInitialized = errors.New("client not initialized")
	ErrEmptyResponse  = errors.New("empty response")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("%s [request_id=%s]", msg, e.RequestID)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match a 401.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type errorBody struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
	Error   *struct {
		Code    any    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	RequestID string `json:"request_id"`
}

// NewAPIError builds an APIError from a status code and the raw body.
// Both the flat {code,message} and nested {error:{code,message}} shapes are understood.
func NewAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if len(e.Message) > 256 {
			e.Message = e.Message[:256]
		}
		return e
	}
	e.Message = eb.Message
	e.Code = codeString(eb.Code)
	if eb.Error != nil {
		if eb.Error.Message != "" {
			e.Message = eb.Error.Message
		}
		if c := codeString(eb.Error.Code); c != "" {
			e.Code = c
		}
	}
	e.RequestID = eb.RequestID
	return e
}

func codeString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	case float64:
		return fmt.Sprintf("%d", int64(c))
	default:
		return fmt.Sprint(c)
	}
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

func Cause(err error) error {
	return errors.Cause(err)
}
