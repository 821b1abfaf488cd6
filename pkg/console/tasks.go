package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

type TaskConfig struct {
	ScanTypes      []string       `json:"scanTypes"`
	PortScanMode   string         `json:"portScanMode,omitempty"`
	PortRange      string         `json:"portRange,omitempty"`
	RateLimit      int64          `json:"rateLimit,omitempty"`
	Timeout        int64          `json:"timeout,omitempty"`
	Concurrent     int64          `json:"concurrent,omitempty"`
	EnabledPlugins []string       `json:"enabledPlugins,omitempty"`
	PocIDs         []string       `json:"pocIds,omitempty"`
	CustomParams   map[string]any `json:"customParams,omitempty"`
}

type TaskResultStats struct {
	TotalAssets     int64 `json:"totalAssets"`
	ScannedAssets   int64 `json:"scannedAssets"`
	Vulnerabilities int64 `json:"vulnerabilities"`
	Duration        int64 `json:"duration"`
}

type Task struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Progress    float64         `json:"progress"`
	Config      TaskConfig      `json:"config"`
	Targets     []string        `json:"targets"`
	TargetType  string          `json:"targetType,omitempty"`
	NodeID      string          `json:"nodeId,omitempty"`
	ScheduledAt string          `json:"scheduledAt,omitempty"`
	StartedAt   string          `json:"startedAt,omitempty"`
	CompletedAt string          `json:"completedAt,omitempty"`
	Results     TaskResultStats `json:"results"`
	Error       string          `json:"error,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

func toTaskConfig(m result.Record) TaskConfig {
	cfg := TaskConfig{
		ScanTypes:      result.StringSlice(m["scan_types"]),
		PortScanMode:   result.String(m["port_scan_mode"]),
		PortRange:      result.String(m["port_range"]),
		RateLimit:      result.Int64(m["port_scan_rate"]),
		Timeout:        result.Int64(m["timeout"]),
		Concurrent:     result.Int64(m["concurrent"]),
		EnabledPlugins: result.StringSlice(m["enabled_plugins"]),
		PocIDs:         result.StringSlice(m["poc_ids"]),
	}
	if cfg.ScanTypes == nil {
		cfg.ScanTypes = []string{}
	}
	if cp, ok := result.AsRecord(m["custom_params"]); ok {
		cfg.CustomParams = cp
	}
	return cfg
}

func toTask(m result.Record) Task {
	config, _ := result.AsRecord(m["config"])
	stats, _ := result.AsRecord(m["result_stats"])
	status := result.String(m["status"])
	if status == "" {
		status = "pending"
	}
	targets := result.StringSlice(m["targets"])
	if targets == nil {
		targets = []string{}
	}
	return Task{
		ID:          result.String(m["id"]),
		Name:        result.String(m["name"]),
		Type:        result.String(m["type"]),
		Status:      status,
		Progress:    result.Float64(m["progress"]),
		Config:      toTaskConfig(config),
		Targets:     targets,
		TargetType:  result.String(m["target_type"]),
		NodeID:      result.String(m["node_id"]),
		ScheduledAt: result.String(m["scheduled_at"]),
		StartedAt:   result.String(m["started_at"]),
		CompletedAt: result.String(m["completed_at"]),
		Results: TaskResultStats{
			TotalAssets:     result.Int64(stats["total_targets"]),
			ScannedAssets:   result.Int64(stats["scanned_targets"]),
			Vulnerabilities: result.Int64(stats["vulnerabilities_found"]),
			Duration:        result.Int64(stats["duration"]),
		},
		Error:     result.String(m["last_error"]),
		CreatedBy: result.String(m["created_by"]),
		CreatedAt: result.String(m["created_at"]),
		UpdatedAt: result.String(m["updated_at"]),
	}
}

// backend renames the config keys the backend spells differently.
func (c TaskConfig) backend() map[string]any {
	var rate, timeout, threads any
	if c.RateLimit != 0 {
		rate = c.RateLimit
	}
	if c.Timeout != 0 {
		timeout = c.Timeout
	}
	if c.Concurrent != 0 {
		threads = c.Concurrent
	}
	var custom any
	if c.CustomParams != nil {
		custom = c.CustomParams
	}
	return compact(map[string]any{
		"scan_types":      c.ScanTypes,
		"port_scan_mode":  c.PortScanMode,
		"port_range":      c.PortRange,
		"port_scan_rate":  rate,
		"timeout":         timeout,
		"threads":         threads,
		"poc_ids":         c.PocIDs,
		"enabled_plugins": c.EnabledPlugins,
		"custom_params":   custom,
	})
}

type TaskInput struct {
	Name        string
	Type        string
	Targets     []string
	TargetType  string
	Config      TaskConfig
	Description string
	ScheduledAt string
	Tags        []string
}

func (in TaskInput) body() map[string]any {
	return compact(map[string]any{
		"name":         in.Name,
		"type":         in.Type,
		"targets":      in.Targets,
		"target_type":  in.TargetType,
		"config":       in.Config.backend(),
		"description":  in.Description,
		"scheduled_at": in.ScheduledAt,
		"tags":         in.Tags,
	})
}

type TaskQuery struct {
	PageQuery
	Status string
	Type   string
}

type TaskLog struct {
	ID        string `json:"id"`
	TaskID    string `json:"taskId"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func toTaskLog(m result.Record) TaskLog {
	ts := result.String(m["timestamp"])
	if ts == "" {
		ts = result.String(m["created_at"])
	}
	return TaskLog{
		ID:        result.String(m["id"]),
		TaskID:    result.String(m["task_id"]),
		Level:     result.String(m["level"]),
		Message:   result.String(m["message"]),
		Timestamp: ts,
	}
}

type TaskTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config"`
	CreatedAt   string         `json:"createdAt"`
}

func toTemplate(m result.Record) TaskTemplate {
	cfg, _ := result.AsRecord(m["config"])
	return TaskTemplate{
		ID:          result.String(m["id"]),
		Name:        result.String(m["name"]),
		Description: result.String(m["description"]),
		Config:      cfg,
		CreatedAt:   result.String(m["created_at"]),
	}
}

// TaskAction is a lifecycle transition the backend accepts.
type TaskAction string

const (
	TaskStart  TaskAction = "start"
	TaskPause  TaskAction = "pause"
	TaskResume TaskAction = "resume"
	TaskCancel TaskAction = "cancel"
	TaskRetry  TaskAction = "retry"
)

func (a TaskAction) Valid() bool {
	switch a {
	case TaskStart, TaskPause, TaskResume, TaskCancel, TaskRetry:
		return true
	}
	return false
}

type TaskService struct {
	t Transport
}

var tasksEndpoint = pagination.Endpoint{Path: "/tasks", DefaultPageSize: 10}

func (s *TaskService) List(ctx context.Context, q TaskQuery) (*api.Response[pagination.Page[Task]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["status"] = q.Status
	qq["type"] = q.Type
	return pagination.Fetch(ctx, s.t, tasksEndpoint, qq, toTask)
}

func (s *TaskService) Get(ctx context.Context, id string) (*api.Response[Task], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/tasks/%s", id), nil, nil, toTask)
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, "/tasks", nil, in.body())
}

// Update sends fields verbatim; the backend accepts partial task objects.
func (s *TaskService) Update(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/tasks/%s", id), nil, fields)
}

func (s *TaskService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/tasks/%s", id), nil, nil)
}

func (s *TaskService) Do(ctx context.Context, id string, action TaskAction) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, pathf("/tasks/%s/", id)+string(action), nil, nil)
}

func (s *TaskService) Start(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return s.Do(ctx, id, TaskStart)
}

func (s *TaskService) Pause(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return s.Do(ctx, id, TaskPause)
}

func (s *TaskService) Resume(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return s.Do(ctx, id, TaskResume)
}

func (s *TaskService) Cancel(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return s.Do(ctx, id, TaskCancel)
}

func (s *TaskService) Retry(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return s.Do(ctx, id, TaskRetry)
}

func (s *TaskService) Logs(ctx context.Context, taskID string, q PageQuery) (*api.Response[pagination.Page[TaskLog]], error) {
	e := pagination.Endpoint{Path: pathf("/tasks/%s/logs", taskID), DefaultPageSize: 10}
	qq := q.query()
	delete(qq, "search")
	return pagination.Fetch(ctx, s.t, e, qq, toTaskLog)
}

func (s *TaskService) Templates(ctx context.Context, q PageQuery) (*api.Response[pagination.Page[TaskTemplate]], error) {
	e := pagination.Endpoint{Path: "/task-templates", DefaultPageSize: 10}
	qq := q.query()
	delete(qq, "search")
	return pagination.Fetch(ctx, s.t, e, qq, toTemplate)
}

func (s *TaskService) CreateTemplate(ctx context.Context, name, description string, cfg TaskConfig) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, "/task-templates", nil,
		compact(map[string]any{"name": name, "description": description, "config": cfg}))
}

func (s *TaskService) UpdateTemplate(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/task-templates/%s", id), nil, fields)
}

func (s *TaskService) DeleteTemplate(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/task-templates/%s", id), nil, nil)
}
