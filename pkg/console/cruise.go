package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

// Cruise is a scheduled scan. The backend already speaks snake_case
// here, and those names are kept.
type Cruise struct {
	ID               string         `json:"id"`
	WorkspaceID      string         `json:"workspace_id,omitempty"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	Status           string         `json:"status"`
	CronExpr         string         `json:"cron_expr"`
	Timezone         string         `json:"timezone"`
	Targets          []string       `json:"targets"`
	TargetType       string         `json:"target_type"`
	TaskType         string         `json:"task_type"`
	Config           map[string]any `json:"config"`
	NotifyOnComplete bool           `json:"notify_on_complete"`
	NotifyOnVuln     bool           `json:"notify_on_vuln"`
	NotifyChannels   []string       `json:"notify_channels"`
	Tags             []string       `json:"tags"`
	CreatedBy        string         `json:"created_by"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	LastRunAt        string         `json:"last_run_at,omitempty"`
	NextRunAt        string         `json:"next_run_at,omitempty"`
	LastTaskID       string         `json:"last_task_id,omitempty"`
	LastStatus       string         `json:"last_status,omitempty"`
	RunCount         int64          `json:"run_count"`
	SuccessCount     int64          `json:"success_count"`
	FailCount        int64          `json:"fail_count"`
}

type CruiseLog struct {
	ID          string `json:"id"`
	CruiseID    string `json:"cruise_id"`
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	Duration    int64  `json:"duration"`
	ResultCount int64  `json:"result_count"`
	VulnCount   int64  `json:"vuln_count"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type CruiseStats struct {
	Total    int64 `json:"total"`
	Enabled  int64 `json:"enabled"`
	Disabled int64 `json:"disabled"`
	Running  int64 `json:"running"`
}

// CruiseInput is sent as-is; omitted fields stay unchanged on update.
type CruiseInput struct {
	Name             string         `json:"name,omitempty"`
	Description      string         `json:"description,omitempty"`
	CronExpr         string         `json:"cron_expr,omitempty"`
	Timezone         string         `json:"timezone,omitempty"`
	Targets          []string       `json:"targets,omitempty"`
	TargetType       string         `json:"target_type,omitempty"`
	TaskType         string         `json:"task_type,omitempty"`
	Config           map[string]any `json:"config,omitempty"`
	NotifyOnComplete *bool          `json:"notify_on_complete,omitempty"`
	NotifyOnVuln     *bool          `json:"notify_on_vuln,omitempty"`
	NotifyChannels   []string       `json:"notify_channels,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
}

type CruiseService struct {
	t Transport
}

// List reads the {items,total,page,pageSize} object form and returns the
// same page shape as every other list.
func (s *CruiseService) List(ctx context.Context, q PageQuery) (*api.Response[pagination.Page[Cruise]], error) {
	e := pagination.Endpoint{Path: "/cruises", DefaultPageSize: 10, Rename: camel}
	return pagination.Fetch[Cruise](ctx, s.t, e, q.query(), nil)
}

func (s *CruiseService) Stats(ctx context.Context) (*api.Response[CruiseStats], error) {
	return api.Invoke[CruiseStats](ctx, s.t, http.MethodGet, "/cruises/stats", nil, nil)
}

func (s *CruiseService) Get(ctx context.Context, id string) (*api.Response[Cruise], error) {
	return api.Invoke[Cruise](ctx, s.t, http.MethodGet, pathf("/cruises/%s", id), nil, nil)
}

func (s *CruiseService) Create(ctx context.Context, in CruiseInput) (*api.Response[Cruise], error) {
	return api.Invoke[Cruise](ctx, s.t, http.MethodPost, "/cruises", nil, in)
}

func (s *CruiseService) Update(ctx context.Context, id string, in CruiseInput) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/cruises/%s", id), nil, in)
}

func (s *CruiseService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/cruises/%s", id), nil, nil)
}

func (s *CruiseService) Enable(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, pathf("/cruises/%s/enable", id), nil, nil)
}

func (s *CruiseService) Disable(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, pathf("/cruises/%s/disable", id), nil, nil)
}

func (s *CruiseService) Run(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, pathf("/cruises/%s/run", id), nil, nil)
}

func (s *CruiseService) Logs(ctx context.Context, id string, q PageQuery) (*api.Response[pagination.Page[CruiseLog]], error) {
	e := pagination.Endpoint{Path: pathf("/cruises/%s/logs", id), DefaultPageSize: 10, Rename: camel}
	return pagination.Fetch[CruiseLog](ctx, s.t, e, q.query(), nil)
}
