package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
)

type TakeoverCheck struct {
	Domain      string   `json:"domain"`
	Vulnerable  bool     `json:"vulnerable"`
	Provider    string   `json:"provider,omitempty"`
	CNAMEs      []string `json:"cnames,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Confidence  string   `json:"confidence"`
	CheckedAt   string   `json:"checkedAt"`
}

type TakeoverBatch struct {
	Total      int64           `json:"total"`
	Vulnerable int64           `json:"vulnerable"`
	Results    []TakeoverCheck `json:"results"`
	Duration   string          `json:"duration"`
}

type TakeoverProvider struct {
	Name         string   `json:"name"`
	CNAMEs       []string `json:"cnames"`
	Fingerprints []string `json:"fingerprints"`
	Description  string   `json:"description"`
}

type TakeoverService struct {
	t Transport
}

func (s *TakeoverService) Check(ctx context.Context, domain string) (*api.Response[TakeoverCheck], error) {
	return api.Invoke[TakeoverCheck](ctx, s.t, http.MethodPost, "/scan/takeover", nil, map[string]any{"domain": domain})
}

func (s *TakeoverService) BatchCheck(ctx context.Context, domains []string) (*api.Response[TakeoverBatch], error) {
	return api.Invoke[TakeoverBatch](ctx, s.t, http.MethodPost, "/scan/takeover/batch", nil, map[string]any{"domains": domains})
}

func (s *TakeoverService) Providers(ctx context.Context) (*api.Response[[]TakeoverProvider], error) {
	return api.Invoke[[]TakeoverProvider](ctx, s.t, http.MethodGet, "/scan/takeover/providers", nil, nil)
}

func (s *TakeoverService) History(ctx context.Context, q PageQuery, vulnerable *bool) (*api.Response[pagination.Page[TakeoverCheck]], error) {
	e := pagination.Endpoint{Path: "/scan/takeover/history", DefaultPageSize: 10, Rename: camel}
	qq := q.query()
	delete(qq, "search")
	qq["vulnerable"] = vulnerable
	return pagination.Fetch[TakeoverCheck](ctx, s.t, e, qq, nil)
}
