package console

import (
	"context"
	"net/http"
	"net/url"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

const DefaultResultPageSize = 20

// ResultQuery filters the scan results of one task.
type ResultQuery struct {
	Type       result.Kind
	Page       int
	PageSize   int
	Search     string
	StatusCode int
}

func (q ResultQuery) query() pagination.Query {
	return pagination.Query{
		"type":       string(q.Type),
		"page":       q.Page,
		"pageSize":   q.PageSize,
		"search":     q.Search,
		"statusCode": q.StatusCode,
	}
}

type ResultService struct {
	t Transport
}

func resultEndpoint(taskID, suffix string) pagination.Endpoint {
	return pagination.Endpoint{
		Path:            pathf("/tasks/%s/results", taskID) + suffix,
		DefaultPageSize: DefaultResultPageSize,
		Rename:          map[string]string{"pageSize": "size", "search": "search"},
	}
}

// List fetches one page of normalized results.
func (s *ResultService) List(ctx context.Context, taskID string, q ResultQuery) (*api.Response[pagination.Page[result.Record]], error) {
	qq := q.query()
	if q.StatusCode == 0 {
		delete(qq, "statusCode")
	}
	return pagination.FetchResults(ctx, s.t, resultEndpoint(taskID, ""), qq)
}

// All fetches every page matching q concurrently, in page order.
func (s *ResultService) All(ctx context.Context, taskID string, q ResultQuery, workers int) ([]result.Record, int64, error) {
	qq := q.query()
	delete(qq, "page")
	if q.StatusCode == 0 {
		delete(qq, "statusCode")
	}
	return pagination.FetchAll(ctx, s.t, resultEndpoint(taskID, ""), qq, result.Normalize, workers)
}

// Stats returns the per-kind counts. Kinds the backend omits count 0.
func (s *ResultService) Stats(ctx context.Context, taskID string) (*api.Response[result.Stats], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/tasks/%s/results/stats", taskID), nil, nil, result.NewStats)
}

// Domains lists root domain results as typed records.
func (s *ResultService) Domains(ctx context.Context, taskID string, q PageQuery) (*api.Response[pagination.Page[result.DomainResult]], error) {
	return pagination.Fetch(ctx, s.t, resultEndpoint(taskID, "/domains"), q.query(), narrow[result.DomainResult])
}

// Subdomains lists subdomain results as typed records.
func (s *ResultService) Subdomains(ctx context.Context, taskID string, q PageQuery) (*api.Response[pagination.Page[result.SubdomainResult]], error) {
	return pagination.Fetch(ctx, s.t, resultEndpoint(taskID, "/subdomains"), q.query(), narrow[result.SubdomainResult])
}

func narrow[T any](raw result.Record) T {
	v, _ := result.As[T](result.Normalize(raw))
	return v
}

// Export returns every result of the task, optionally of one kind,
// normalized. The backend sends them in one answer.
func (s *ResultService) Export(ctx context.Context, taskID string, kind result.Kind) ([]result.Record, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("type", string(kind))
	}
	resp, err := api.Invoke[[]any](ctx, s.t, http.MethodGet, pathf("/tasks/%s/results/export", taskID), q, nil)
	if err != nil {
		return nil, err
	}
	return result.NormalizeAll(resp.Data), nil
}

// UpdateTags replaces the tag list of a result. Order is kept and
// duplicates are not removed.
func (s *ResultService) UpdateTags(ctx context.Context, resultID string, tags []string) (*Ack, error) {
	if tags == nil {
		tags = []string{}
	}
	return ack(ctx, s.t, http.MethodPut, pathf("/results/%s/tags", resultID), nil, map[string]any{"tags": tags})
}

func (s *ResultService) AddTag(ctx context.Context, resultID, tag string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, pathf("/results/%s/tags", resultID), nil, map[string]any{"tag": tag})
}

func (s *ResultService) RemoveTag(ctx context.Context, resultID, tag string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/results/%s/tags", resultID), url.Values{"tag": {tag}}, nil)
}

func (s *ResultService) BatchDelete(ctx context.Context, ids []string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, "/results/batch-delete", nil, map[string]any{"ids": ids})
}
