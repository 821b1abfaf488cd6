package console

import (
	"context"
	"io"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

type Poc struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	Content      string   `json:"content"`
	CveID        string   `json:"cveId,omitempty"`
	Tags         []string `json:"tags"`
	Author       string   `json:"author,omitempty"`
	References   []string `json:"references"`
	Enabled      bool     `json:"enabled"`
	LastUsed     string   `json:"lastUsed,omitempty"`
	SuccessCount int64    `json:"successCount"`
	FailCount    int64    `json:"failCount"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func toPoc(m result.Record) Poc {
	tags := result.StringSlice(m["tags"])
	if tags == nil {
		tags = []string{}
	}
	refs := result.StringSlice(m["references"])
	if refs == nil {
		refs = []string{}
	}
	// cve_id is a list on write but may come back as either shape.
	cve := result.String(m["cve_id"])
	if ids := result.StringSlice(m["cve_id"]); cve == "" && len(ids) > 0 {
		cve = ids[0]
	}
	return Poc{
		ID:           result.String(m["id"]),
		Name:         result.String(m["name"]),
		Type:         result.String(m["type"]),
		Severity:     result.String(m["severity"]),
		Description:  result.String(m["description"]),
		Content:      result.String(m["content"]),
		CveID:        cve,
		Tags:         tags,
		Author:       result.String(m["author"]),
		References:   refs,
		Enabled:      result.Bool(m["enabled"]),
		LastUsed:     result.String(m["last_used"]),
		SuccessCount: result.Int64(m["success_count"]),
		FailCount:    result.Int64(m["fail_count"]),
		CreatedAt:    result.String(m["created_at"]),
		UpdatedAt:    result.String(m["updated_at"]),
	}
}

// PocInput is used for create and update. Nil pointers and empty fields
// are left out of updates.
type PocInput struct {
	Name        string
	Type        string
	Severity    string
	Description string
	Content     string
	CveID       string
	Tags        []string
	Author      string
	References  []string
	Enabled     *bool
}

func (in PocInput) createBody() map[string]any {
	cve := []string{}
	if in.CveID != "" {
		cve = []string{in.CveID}
	}
	tags, refs := in.Tags, in.References
	if tags == nil {
		tags = []string{}
	}
	if refs == nil {
		refs = []string{}
	}
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	return compact(map[string]any{
		"name":        in.Name,
		"type":        in.Type,
		"severity":    in.Severity,
		"description": in.Description,
		"content":     in.Content,
		"cve_id":      cve,
		"tags":        tags,
		"author":      in.Author,
		"references":  refs,
		"enabled":     enabled,
	})
}

func (in PocInput) updateBody() map[string]any {
	var cve []string
	if in.CveID != "" {
		cve = []string{in.CveID}
	}
	return compact(map[string]any{
		"name":        in.Name,
		"type":        in.Type,
		"severity":    in.Severity,
		"description": in.Description,
		"content":     in.Content,
		"cve_id":      cve,
		"tags":        in.Tags,
		"author":      in.Author,
		"references":  in.References,
		"enabled":     in.Enabled,
	})
}

type PocQuery struct {
	PageQuery
	Type     string
	Severity string
	Enabled  *bool
}

type PocService struct {
	t Transport
}

var pocsEndpoint = pagination.Endpoint{
	Path:            "/pocs",
	DefaultPageSize: 20,
	Rename:          map[string]string{"search": "search"},
}

func (s *PocService) List(ctx context.Context, q PocQuery) (*api.Response[pagination.Page[Poc]], error) {
	qq := q.query()
	qq["type"] = q.Type
	qq["severity"] = q.Severity
	qq["enabled"] = q.Enabled
	return pagination.Fetch(ctx, s.t, pocsEndpoint, qq, toPoc)
}

func (s *PocService) Get(ctx context.Context, id string) (*api.Response[Poc], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/pocs/%s", id), nil, nil, toPoc)
}

// Create defaults enabled to true and always sends cve_id as a list.
func (s *PocService) Create(ctx context.Context, in PocInput) (*api.Response[Poc], error) {
	return api.Map(ctx, s.t, http.MethodPost, "/pocs", nil, in.createBody(), toPoc)
}

func (s *PocService) Update(ctx context.Context, id string, in PocInput) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/pocs/%s", id), nil, in.updateBody())
}

func (s *PocService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/pocs/%s", id), nil, nil)
}

func (s *PocService) BatchDelete(ctx context.Context, ids []string) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, "/pocs/batch-delete", nil, map[string]any{"ids": ids})
}

func (s *PocService) ClearAll(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodDelete, "/pocs/clear-all", nil, nil)
}

func (s *PocService) Toggle(ctx context.Context, id string, enabled bool) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, pathf("/pocs/%s/toggle", id), nil, map[string]any{"enabled": enabled})
}

func (s *PocService) Statistics(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, "/pocs/statistics", nil, nil)
}

// Import uploads a zip of templates; data reports imported, failed and
// skipped files.
func (s *PocService) Import(ctx context.Context, filename string, r io.Reader) (*api.Response[result.Record], error) {
	return upload(ctx, s.t, "/pocs/import", filename, r)
}
