package console

import (
	"context"
	"io"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

type Node struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Hostname       string   `json:"hostname"`
	IPAddress      string   `json:"ipAddress"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	Capabilities   []string `json:"capabilities"`
	MaxConcurrency int64    `json:"maxConcurrency"`
	CurrentTasks   int64    `json:"currentTasks"`
	CPUUsage       float64  `json:"cpuUsage"`
	MemoryUsage    float64  `json:"memoryUsage"`
	Version        string   `json:"version"`
	LastHeartbeat  string   `json:"lastHeartbeat"`
	RegisteredAt   string   `json:"registeredAt"`
}

func toNode(m result.Record) Node {
	sys, _ := result.AsRecord(m["system_info"])
	caps := result.StringSlice(m["capabilities"])
	if caps == nil {
		caps = []string{}
	}
	return Node{
		ID:             result.String(m["id"]),
		Name:           result.String(m["name"]),
		Hostname:       result.String(m["hostname"]),
		IPAddress:      result.String(m["ip_address"]),
		Status:         result.String(m["status"]),
		Type:           result.String(m["type"]),
		Capabilities:   caps,
		MaxConcurrency: result.Int64(m["max_tasks"]),
		CurrentTasks:   result.Int64(m["current_tasks"]),
		CPUUsage:       result.Float64(sys["cpu_usage"]),
		MemoryUsage:    result.Float64(sys["memory_usage"]),
		Version:        result.String(m["version"]),
		LastHeartbeat:  result.String(m["last_heartbeat"]),
		RegisteredAt:   result.String(m["created_at"]),
	}
}

type NodeQuery struct {
	PageQuery
	Status string
	Type   string
}

type NodeService struct {
	t Transport
}

func (s *NodeService) List(ctx context.Context, q NodeQuery) (*api.Response[pagination.Page[Node]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["status"] = q.Status
	qq["type"] = q.Type
	return pagination.Fetch(ctx, s.t, pagination.Endpoint{Path: "/nodes", DefaultPageSize: 10}, qq, toNode)
}

func (s *NodeService) Get(ctx context.Context, id string) (*api.Response[Node], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/nodes/%s", id), nil, nil, toNode)
}

func (s *NodeService) Update(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/nodes/%s", id), nil, fields)
}

func (s *NodeService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/nodes/%s", id), nil, nil)
}

func (s *NodeService) Stats(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, "/nodes/stats", nil, nil)
}

type Plugin struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Version      string         `json:"version"`
	Description  string         `json:"description,omitempty"`
	Author       string         `json:"author,omitempty"`
	Enabled      bool           `json:"enabled"`
	Config       map[string]any `json:"config,omitempty"`
	Capabilities []string       `json:"capabilities"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
}

func toPlugin(m result.Record) Plugin {
	cfg, _ := result.AsRecord(m["config"])
	caps := result.StringSlice(m["capabilities"])
	if caps == nil {
		caps = []string{}
	}
	return Plugin{
		ID:           result.String(m["id"]),
		Name:         result.String(m["name"]),
		Type:         result.String(m["type"]),
		Version:      result.String(m["version"]),
		Description:  result.String(m["description"]),
		Author:       result.String(m["author"]),
		Enabled:      result.Bool(m["enabled"]),
		Config:       cfg,
		Capabilities: caps,
		CreatedAt:    result.String(m["created_at"]),
		UpdatedAt:    result.String(m["updated_at"]),
	}
}

type PluginQuery struct {
	PageQuery
	Type    string
	Enabled *bool
}

type PluginService struct {
	t Transport
}

func (s *PluginService) List(ctx context.Context, q PluginQuery) (*api.Response[pagination.Page[Plugin]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["type"] = q.Type
	qq["enabled"] = q.Enabled
	return pagination.Fetch(ctx, s.t, pagination.Endpoint{Path: "/plugins", DefaultPageSize: 10}, qq, toPlugin)
}

func (s *PluginService) Get(ctx context.Context, id string) (*api.Response[Plugin], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/plugins/%s", id), nil, nil, toPlugin)
}

func (s *PluginService) Create(ctx context.Context, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, "/plugins", nil, fields)
}

func (s *PluginService) Update(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/plugins/%s", id), nil, fields)
}

func (s *PluginService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/plugins/%s", id), nil, nil)
}

func (s *PluginService) Toggle(ctx context.Context, id string, enabled bool) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/plugins/%s/toggle", id), nil, map[string]any{"enabled": enabled})
}

func (s *PluginService) Upload(ctx context.Context, filename string, r io.Reader) (*api.Response[result.Record], error) {
	return upload(ctx, s.t, "/plugins/upload", filename, r)
}
