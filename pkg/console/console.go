// Package console exposes the scan platform's REST resources as typed
// services. Every list call goes through pagination, every answer keeps
// the {code, message, data} shape of the backend.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

// Transport is what the services need from api.Client.
type Transport interface {
	api.Caller
	Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error)
	Upload(ctx context.Context, path, field, filename string, file io.Reader, fields map[string]string) (*api.Envelope, error)
}

// Ack is an answer whose data is not interpreted, usually null.
type Ack = api.Response[json.RawMessage]

type Console struct {
	Results   *ResultService
	Assets    *AssetService
	Tasks     *TaskService
	Vulns     *VulnService
	Pocs      *PocService
	Nodes     *NodeService
	Plugins   *PluginService
	Cruise    *CruiseService
	Notify    *NotifyService
	Monitor   *MonitorService
	Takeover  *TakeoverService
	Queue     *QueueService
	Dashboard *DashboardService
	Settings  *SettingsService
	Auth      *AuthService
	Users     *UserService
}

// New wires every service to t. tokens receives the session token on
// login and refresh; it may be nil.
func New(t Transport, tokens TokenSetter) *Console {
	return &Console{
		Results:   &ResultService{t: t},
		Assets:    &AssetService{t: t},
		Tasks:     &TaskService{t: t},
		Vulns:     &VulnService{t: t},
		Pocs:      &PocService{t: t},
		Nodes:     &NodeService{t: t},
		Plugins:   &PluginService{t: t},
		Cruise:    &CruiseService{t: t},
		Notify:    &NotifyService{t: t},
		Monitor:   &MonitorService{t: t},
		Takeover:  &TakeoverService{t: t},
		Queue:     &QueueService{t: t},
		Dashboard: &DashboardService{t: t},
		Settings:  &SettingsService{t: t},
		Auth:      &AuthService{t: t, tokens: tokens},
		Users:     &UserService{t: t},
	}
}

// PageQuery is the common list filter. Zero values are not sent.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
}

func (p PageQuery) query() pagination.Query {
	return pagination.Query{"page": p.Page, "pageSize": p.PageSize, "search": p.Search}
}

// camel keeps the caller's camelCase keys for endpoints that take them
// as-is.
var camel = map[string]string{
	"pageSize":  "pageSize",
	"search":    "search",
	"pageId":    "pageId",
	"channelId": "channelId",
}

func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}

func ack(ctx context.Context, t api.Caller, method, path string, query url.Values, body any) (*Ack, error) {
	return api.Invoke[json.RawMessage](ctx, t, method, path, query, body)
}

func upload(ctx context.Context, t Transport, path, filename string, r io.Reader) (*api.Response[result.Record], error) {
	env, err := t.Upload(ctx, path, "file", filename, r, nil)
	if err != nil {
		return nil, err
	}
	out := &api.Response[result.Record]{Code: env.Code, Message: env.Message}
	if err := env.Decode(&out.Data); err != nil {
		return nil, err
	}
	return out, nil
}

// compact drops nil entries so optional fields are not sent.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		switch t := v.(type) {
		case nil:
			delete(m, k)
		case string:
			if t == "" {
				delete(m, k)
			}
		case []string:
			if t == nil {
				delete(m, k)
			}
		case map[string]any:
			if t == nil {
				delete(m, k)
			}
		case *bool:
			if t == nil {
				delete(m, k)
			}
		case *int:
			if t == nil {
				delete(m, k)
			}
		}
	}
	return m
}

// withRaw marshals v and lays its keys over raw, so fields the backend
// sent but v does not model survive.
func withRaw(raw result.Record, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(raw) == 0 {
		return b, err
	}
	var typed map[string]any
	if err := json.Unmarshal(b, &typed); err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(raw)+len(typed))
	for k, val := range raw {
		merged[k] = val
	}
	for k, val := range typed {
		merged[k] = val
	}
	return json.Marshal(merged)
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
