package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	mgerrors "github.com/zan8in/moongazing/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout applies to every request; there is no retry.
	DefaultTimeout = 30 * time.Second

	DefaultBaseURL = "http://127.0.0.1:8080/api"
)

type ClientOptions struct {
	Timeout time.Duration
	Proxy   string

	// Tokens supplies the bearer token. If it also implements Clear, a 401
	// answer clears it.
	Tokens TokenSource

	// OnUnauthorized runs after the token is cleared on a 401 answer.
	OnUnauthorized func()

	Logger *zap.Logger

	// Middlewares run inside the built-in chain, closest to the transport.
	Middlewares []Middleware

	// Transport replaces the default transport, mostly for tests.
	Transport http.RoundTripper
}

type Client struct {
	base   string
	hc     *http.Client
	tokens TokenSource
}

// Caller is the part of Client the pagination and entity layers rely on.
type Caller interface {
	Call(ctx context.Context, method, path string, query url.Values, body any) (*Envelope, error)
}

func NewClient(base string, opts ClientOptions) *Client {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var rt http.RoundTripper = opts.Transport
	if rt == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		}
		if strings.TrimSpace(opts.Proxy) != "" {
			if pu, err := url.Parse(opts.Proxy); err == nil {
				tr.Proxy = http.ProxyURL(pu)
			}
		}
		rt = tr
	}

	chain := []Middleware{
		RequestID(),
		BearerAuth(opts.Tokens),
		AccessLog(opts.Logger),
		Unauthorized(opts.Tokens, opts.OnUnauthorized),
	}
	chain = append(chain, opts.Middlewares...)

	return &Client{
		base:   base,
		tokens: opts.Tokens,
		hc: &http.Client{
			Timeout:   opts.Timeout,
			Transport: Chain(rt, chain...),
		},
	}
}

// BaseURL returns the normalized base URL, without a trailing slash.
func (c *Client) BaseURL() string {
	return c.base
}

// Tokens returns the token source the client was built with.
func (c *Client) Tokens() TokenSource {
	return c.tokens
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, u, body)
}

func (c *Client) send(r *http.Request) ([]byte, error) {
	res, err := c.hc.Do(r)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, mgerrors.NewAPIError(res.StatusCode, b)
	}
	return b, nil
}

// Do sends one JSON request and decodes the answer into out.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, req any, out any) error {
	if c == nil || c.hc == nil {
		return mgerrors.ErrNotInitialized
	}
	var body io.Reader
	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
	}
	r, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	r.Header.Set("Accept", "application/json")
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	b, err := c.send(r)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return mgerrors.ErrEmptyResponse
	}
	return errors.Wrapf(json.Unmarshal(b, out), "decode %s %s", method, path)
}

// Call sends one request and returns the backend envelope.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (*Envelope, error) {
	var env Envelope
	if err := c.Do(ctx, method, path, query, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Download streams a binary answer, such as an export blob, into w.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error) {
	if c == nil || c.hc == nil {
		return 0, mgerrors.ErrNotInitialized
	}
	r, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	r.Header.Set("Accept", "*/*")

	res, err := c.hc.Do(r)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4*1024))
		return 0, mgerrors.NewAPIError(res.StatusCode, b)
	}
	return io.Copy(w, res.Body)
}

// Upload posts a multipart form with one file part and optional fields.
func (c *Client) Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string) (*Envelope, error) {
	if c == nil || c.hc == nil {
		return nil, mgerrors.ErrNotInitialized
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, errors.Wrap(err, "read upload")
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	r, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set("Content-Type", mw.FormDataContentType())

	b, err := c.send(r)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, mgerrors.ErrEmptyResponse
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, errors.Wrap(err, "decode upload response")
	}
	return &env, nil
}
