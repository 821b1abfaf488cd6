package console

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

type Asset struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Target       string   `json:"target"`
	Status       string   `json:"status"`
	Tags         []string `json:"tags"`
	GroupID      string   `json:"groupId,omitempty"`
	LastScanTime string   `json:"lastScanTime,omitempty"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`

	// Raw is the backend object; its other fields are kept on output.
	Raw result.Record `json:"-"`
}

func (a Asset) MarshalJSON() ([]byte, error) {
	type plain Asset
	return withRaw(a.Raw, plain(a))
}

func toAsset(m result.Record) Asset {
	status := "active"
	if result.Truthy(m["status"]) {
		status = stringOf(m["status"])
	}
	tags := result.StringSlice(m["tags"])
	if tags == nil {
		tags = []string{}
	}
	return Asset{
		ID:           result.String(m["id"]),
		Name:         result.String(m["title"]),
		Type:         result.String(m["type"]),
		Target:       result.String(m["value"]),
		Status:       status,
		Tags:         tags,
		GroupID:      result.String(m["group_id"]),
		LastScanTime: result.String(m["last_scan_time"]),
		CreatedAt:    result.String(m["created_at"]),
		UpdatedAt:    result.String(m["updated_at"]),
		Raw:          m,
	}
}

// AssetInput is the create and update payload in caller vocabulary.
type AssetInput struct {
	Type    string
	Target  string
	Name    string
	Tags    []string
	GroupID string
}

func (in AssetInput) body() map[string]any {
	return compact(map[string]any{
		"type":     in.Type,
		"value":    in.Target,
		"title":    in.Name,
		"tags":     in.Tags,
		"group_id": in.GroupID,
	})
}

type AssetQuery struct {
	PageQuery
	Type    string
	Status  string
	GroupID string
	Tags    []string
}

type AssetGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AssetCount  int64  `json:"assetCount"`
	CreatedAt   string `json:"createdAt"`
}

type AssetService struct {
	t Transport
}

var assetsEndpoint = pagination.Endpoint{Path: "/assets", DefaultPageSize: 10}

func (s *AssetService) List(ctx context.Context, q AssetQuery) (*api.Response[pagination.Page[Asset]], error) {
	qq := q.query()
	qq["type"] = q.Type
	qq["status"] = q.Status
	qq["groupId"] = q.GroupID
	qq["tags"] = q.Tags
	return pagination.Fetch(ctx, s.t, assetsEndpoint, qq, toAsset)
}

func (s *AssetService) Get(ctx context.Context, id string) (*api.Response[Asset], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/assets/%s", id), nil, nil, toAsset)
}

func (s *AssetService) Create(ctx context.Context, in AssetInput) (*api.Response[Asset], error) {
	return api.Map(ctx, s.t, http.MethodPost, "/assets", nil, in.body(), toAsset)
}

func (s *AssetService) Update(ctx context.Context, id string, in AssetInput) (*api.Response[Asset], error) {
	return api.Map(ctx, s.t, http.MethodPut, pathf("/assets/%s", id), nil, in.body(), toAsset)
}

func (s *AssetService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/assets/%s", id), nil, nil)
}

func (s *AssetService) BatchDelete(ctx context.Context, ids []string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, "/assets/batch-delete", nil, map[string]any{"ids": ids})
}

// Import uploads an asset file; data carries imported and failed counts.
func (s *AssetService) Import(ctx context.Context, filename string, r io.Reader) (*api.Response[result.Record], error) {
	return upload(ctx, s.t, "/assets/import", filename, r)
}

// Export streams the asset export blob into w.
func (s *AssetService) Export(ctx context.Context, typ, groupID string, w io.Writer) (int64, error) {
	q := url.Values{}
	if typ != "" {
		q.Set("type", typ)
	}
	if groupID != "" {
		q.Set("groupId", groupID)
	}
	return s.t.Download(ctx, "/assets/export", q, w)
}

func (s *AssetService) Groups(ctx context.Context, q PageQuery) (*api.Response[pagination.Page[AssetGroup]], error) {
	e := pagination.Endpoint{Path: "/asset-groups", DefaultPageSize: 10, Rename: camel}
	return pagination.Fetch[AssetGroup](ctx, s.t, e, q.query(), nil)
}

func (s *AssetService) CreateGroup(ctx context.Context, name, description string) (*api.Response[AssetGroup], error) {
	return api.Invoke[AssetGroup](ctx, s.t, http.MethodPost, "/asset-groups", nil,
		compact(map[string]any{"name": name, "description": description}))
}

func (s *AssetService) UpdateGroup(ctx context.Context, id, name, description string) (*api.Response[AssetGroup], error) {
	return api.Invoke[AssetGroup](ctx, s.t, http.MethodPut, pathf("/asset-groups/%s", id), nil,
		compact(map[string]any{"name": name, "description": description}))
}

func (s *AssetService) DeleteGroup(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/asset-groups/%s", id), nil, nil)
}

// MoveToGroup reassigns assets. The backend takes camelCase keys here.
func (s *AssetService) MoveToGroup(ctx context.Context, assetIDs []string, groupID string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, "/asset-groups/move", nil, map[string]any{"assetIds": assetIDs, "groupId": groupID})
}
