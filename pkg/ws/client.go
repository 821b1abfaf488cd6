package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"golang.org/x/net/websocket"
)

const (
	TypeMonitorData = "monitor_data"

	DefaultReconnectInterval = 3 * time.Second
)

// Message is one frame. Type and Timestamp are read from the frame and
// Data holds the whole frame for typed decoding.
type Message struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"-"`
}

// Time converts a frame timestamp in unix seconds, fractions allowed.
func Time(ts float64) time.Time {
	sec := int64(ts)
	return time.Unix(sec, int64((ts-float64(sec))*float64(time.Second)))
}

type SystemData struct {
	CPUUsage    float64 `json:"cpu_usage"`
	MemoryUsage float64 `json:"memory_usage"`
	MemoryTotal uint64  `json:"memory_total"`
	MemoryUsed  uint64  `json:"memory_used"`
	DiskUsage   float64 `json:"disk_usage"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskUsed    uint64  `json:"disk_used"`
}

type NodesData struct {
	Total   int64 `json:"total"`
	Online  int64 `json:"online"`
	Offline int64 `json:"offline"`
}

// MonitorData is the payload of a monitor_data frame.
type MonitorData struct {
	Type      string     `json:"type"`
	Timestamp float64    `json:"timestamp"`
	System    SystemData `json:"system"`
	Nodes     NodesData  `json:"nodes"`
}

// Decode unmarshals the full frame into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

type Handler func(Message)

type Options struct {
	// Token is sent as a bearer header and as the token query parameter.
	Token string
	// Reconnect defaults to DefaultReconnectInterval.
	Reconnect time.Duration
	OnOpen    func()
	OnClose   func()
}

// Client keeps one connection to <base>/ws open and dispatches frames by
// type until its context is cancelled.
type Client struct {
	url  string
	opts Options

	mu       sync.RWMutex
	handlers map[string][]Handler
	catchAll []Handler

	connMu sync.Mutex
	conn   *websocket.Conn
}

// Endpoint turns an http(s) API base into the ws(s) URL of the stream.
func Endpoint(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/ws")
	if err != nil {
		return "", errors.Wrap(err, "parse websocket base")
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws", "":
		u.Scheme = "ws"
	default:
		return "", errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func New(base string, opts Options) (*Client, error) {
	u, err := Endpoint(base, opts.Token)
	if err != nil {
		return nil, err
	}
	if opts.Reconnect <= 0 {
		opts.Reconnect = DefaultReconnectInterval
	}
	return &Client{url: u, opts: opts, handlers: map[string][]Handler{}}, nil
}

func (c *Client) URL() string { return c.url }

// On registers h for frames of type typ. An empty type matches every frame.
func (c *Client) On(typ string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if typ == "" {
		c.catchAll = append(c.catchAll, h)
		return
	}
	c.handlers[typ] = append(c.handlers[typ], h)
}

// OnMonitor registers a handler for decoded monitor_data frames.
func (c *Client) OnMonitor(h func(MonitorData)) {
	c.On(TypeMonitorData, func(m Message) {
		var d MonitorData
		if err := m.Decode(&d); err != nil {
			gologger.Debug().Msgf("bad monitor frame: %v", err)
			return
		}
		h(d)
	})
}

func (c *Client) dispatch(m Message) {
	c.mu.RLock()
	hs := append(append([]Handler{}, c.handlers[m.Type]...), c.catchAll...)
	c.mu.RUnlock()
	for _, h := range hs {
		h(m)
	}
}

// Send writes v as a JSON frame on the current connection.
func (c *Client) Send(v any) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.conn == nil {
		return errors.New("websocket is not connected")
	}
	return websocket.JSON.Send(c.conn, v)
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	origin := strings.Replace(strings.Replace(c.url, "wss://", "https://", 1), "ws://", "http://", 1)
	cfg, err := websocket.NewConfig(c.url, origin)
	if err != nil {
		return nil, err
	}
	if c.opts.Token != "" {
		cfg.Header = http.Header{"Authorization": {"Bearer " + c.opts.Token}}
	}
	return cfg.DialContext(ctx)
}

// Run connects and reads frames, reconnecting after every drop or dial
// failure. It returns ctx.Err() once ctx is done.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			gologger.Debug().Msgf("websocket dial %s: %v", c.url, err)
		} else {
			c.serve(ctx, conn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.opts.Reconnect):
			gologger.Debug().Msgf("reconnecting websocket %s", c.url)
		}
	}
}

func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	if c.opts.OnOpen != nil {
		c.opts.OnOpen()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			break
		}
		var m Message
		if err := json.Unmarshal(raw, &m); err != nil {
			// a bad frame is skipped, the connection stays up
			gologger.Debug().Msgf("bad websocket frame: %v", err)
			continue
		}
		m.Data = raw
		c.dispatch(m)
	}
	close(done)

	c.connMu.Lock()
	c.conn = nil
	c.connMu.Unlock()
	conn.Close()
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}
}
