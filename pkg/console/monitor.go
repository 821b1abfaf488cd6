package console

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
)

type MonitoredPage struct {
	ID           string        `json:"id"`
	URL          string        `json:"url"`
	Name         string        `json:"name"`
	Interval     int64         `json:"interval"`
	Enabled      bool          `json:"enabled"`
	MonitorTypes []string      `json:"monitorTypes"`
	Keywords     []string      `json:"keywords,omitempty"`
	LastCheck    string        `json:"lastCheck,omitempty"`
	LastSnapshot *PageSnapshot `json:"lastSnapshot,omitempty"`
	Status       string        `json:"status"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

type PageSnapshot struct {
	ID            string           `json:"id"`
	PageID        string           `json:"pageId"`
	URL           string           `json:"url"`
	ContentHash   string           `json:"contentHash"`
	DomHash       string           `json:"domHash,omitempty"`
	Title         string           `json:"title,omitempty"`
	Links         []string         `json:"links,omitempty"`
	Keywords      map[string]int64 `json:"keywords,omitempty"`
	StatusCode    int              `json:"statusCode"`
	ContentLength int64            `json:"contentLength"`
	CapturedAt    string           `json:"capturedAt"`
}

type ChangeRecord struct {
	ID           string        `json:"id"`
	PageID       string        `json:"pageId"`
	PageName     string        `json:"pageName"`
	URL          string        `json:"url"`
	ChangeType   string        `json:"changeType"`
	OldValue     string        `json:"oldValue"`
	NewValue     string        `json:"newValue"`
	OldSnapshot  *PageSnapshot `json:"oldSnapshot,omitempty"`
	NewSnapshot  *PageSnapshot `json:"newSnapshot,omitempty"`
	DetectedAt   string        `json:"detectedAt"`
	Acknowledged bool          `json:"acknowledged"`
}

type MonitorTypeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PageInput struct {
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	Interval     int64    `json:"interval"`
	MonitorTypes []string `json:"monitorTypes"`
	Keywords     []string `json:"keywords,omitempty"`
}

type ChangeQuery struct {
	PageQuery
	PageID       string
	ChangeType   string
	Acknowledged *bool
}

type CheckResult struct {
	Changed  bool          `json:"changed"`
	Snapshot *PageSnapshot `json:"snapshot,omitempty"`
}

type SnapshotDiff struct {
	Diff    string   `json:"diff"`
	Changes []string `json:"changes"`
}

type MonitorService struct {
	t Transport
}

func monitorEndpoint(path string) pagination.Endpoint {
	return pagination.Endpoint{
		Path:            path,
		DefaultPageSize: 10,
		Rename: map[string]string{
			"pageSize":   "pageSize",
			"pageId":     "pageId",
			"changeType": "changeType",
		},
	}
}

func (s *MonitorService) Types(ctx context.Context) (*api.Response[[]MonitorTypeInfo], error) {
	return api.Invoke[[]MonitorTypeInfo](ctx, s.t, http.MethodGet, "/monitor/types", nil, nil)
}

func (s *MonitorService) Pages(ctx context.Context, q PageQuery, status string) (*api.Response[pagination.Page[MonitoredPage]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["status"] = status
	return pagination.Fetch[MonitoredPage](ctx, s.t, monitorEndpoint("/monitor/pages"), qq, nil)
}

func (s *MonitorService) Page(ctx context.Context, id string) (*api.Response[MonitoredPage], error) {
	return api.Invoke[MonitoredPage](ctx, s.t, http.MethodGet, pathf("/monitor/pages/%s", id), nil, nil)
}

func (s *MonitorService) AddPage(ctx context.Context, in PageInput) (*api.Response[MonitoredPage], error) {
	return api.Invoke[MonitoredPage](ctx, s.t, http.MethodPost, "/monitor/pages", nil, in)
}

func (s *MonitorService) UpdatePage(ctx context.Context, id string, fields map[string]any) (*api.Response[MonitoredPage], error) {
	return api.Invoke[MonitoredPage](ctx, s.t, http.MethodPut, pathf("/monitor/pages/%s", id), nil, fields)
}

func (s *MonitorService) DeletePage(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/monitor/pages/%s", id), nil, nil)
}

func (s *MonitorService) Enable(ctx context.Context, id string, enabled bool) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/monitor/pages/%s/enable", id), nil, map[string]any{"enabled": enabled})
}

func (s *MonitorService) Check(ctx context.Context, id string) (*api.Response[CheckResult], error) {
	return api.Invoke[CheckResult](ctx, s.t, http.MethodPost, pathf("/monitor/pages/%s/check", id), nil, nil)
}

func (s *MonitorService) Changes(ctx context.Context, q ChangeQuery) (*api.Response[pagination.Page[ChangeRecord]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["pageId"] = q.PageID
	qq["changeType"] = q.ChangeType
	qq["acknowledged"] = q.Acknowledged
	return pagination.Fetch[ChangeRecord](ctx, s.t, monitorEndpoint("/monitor/changes"), qq, nil)
}

func (s *MonitorService) Acknowledge(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/monitor/changes/%s/acknowledge", id), nil, nil)
}

func (s *MonitorService) Snapshots(ctx context.Context, pageID string, q PageQuery) (*api.Response[pagination.Page[PageSnapshot]], error) {
	qq := q.query()
	delete(qq, "search")
	return pagination.Fetch[PageSnapshot](ctx, s.t, monitorEndpoint(pathf("/monitor/pages/%s/snapshots", pageID)), qq, nil)
}

func (s *MonitorService) Compare(ctx context.Context, id1, id2 string) (*api.Response[SnapshotDiff], error) {
	return api.Invoke[SnapshotDiff](ctx, s.t, http.MethodGet, "/monitor/snapshots/compare", url.Values{"id1": {id1}, "id2": {id2}}, nil)
}
