package console

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/result"
)

type ActivityLog struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	Target    string `json:"target"`
	TargetID  string `json:"targetId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type TrendData struct {
	Date            string `json:"date"`
	Assets          int64  `json:"assets"`
	Vulnerabilities int64  `json:"vulnerabilities"`
	Tasks           int64  `json:"tasks"`
}

type TopVulnerability struct {
	Type     string `json:"type"`
	Count    int64  `json:"count"`
	Severity string `json:"severity"`
}

type AssetShare struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type DashboardService struct {
	t Transport
}

func limitQuery(key string, n, def int) url.Values {
	if n <= 0 {
		n = def
	}
	return url.Values{key: {strconv.Itoa(n)}}
}

// Stats returns the overview counters as sent by the backend.
func (s *DashboardService) Stats(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, "/dashboard/stats", nil, nil)
}

// Activities returns recent activity; limit defaults to 10.
func (s *DashboardService) Activities(ctx context.Context, limit int) (*api.Response[[]ActivityLog], error) {
	return api.Invoke[[]ActivityLog](ctx, s.t, http.MethodGet, "/dashboard/activities", limitQuery("limit", limit, 10), nil)
}

// Trends returns one point per day; days defaults to 7.
func (s *DashboardService) Trends(ctx context.Context, days int) (*api.Response[[]TrendData], error) {
	return api.Invoke[[]TrendData](ctx, s.t, http.MethodGet, "/dashboard/trends", limitQuery("days", days, 7), nil)
}

func (s *DashboardService) TopVulnerabilities(ctx context.Context, limit int) (*api.Response[[]TopVulnerability], error) {
	return api.Invoke[[]TopVulnerability](ctx, s.t, http.MethodGet, "/dashboard/top-vulnerabilities", limitQuery("limit", limit, 10), nil)
}

func (s *DashboardService) AssetDistribution(ctx context.Context) (*api.Response[[]AssetShare], error) {
	return api.Invoke[[]AssetShare](ctx, s.t, http.MethodGet, "/dashboard/asset-distribution", nil, nil)
}
