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

type Vulnerability struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Severity    string   `json:"severity"`
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	CVE         string   `json:"cve,omitempty"`
	CWE         string   `json:"cwe,omitempty"`
	AssetID     string   `json:"assetId"`
	AssetName   string   `json:"assetName"`
	Target      string   `json:"target"`
	URL         string   `json:"url,omitempty"`
	Parameter   string   `json:"parameter,omitempty"`
	Payload     string   `json:"payload,omitempty"`
	Evidence    string   `json:"evidence,omitempty"`
	Description string   `json:"description,omitempty"`
	Solution    string   `json:"solution,omitempty"`
	References  []string `json:"references,omitempty"`
	PocID       string   `json:"pocId,omitempty"`
	TaskID      string   `json:"taskId,omitempty"`
	VerifiedAt  string   `json:"verifiedAt,omitempty"`
	VerifiedBy  string   `json:"verifiedBy,omitempty"`
	FixedAt     string   `json:"fixedAt,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toVuln(m result.Record) Vulnerability {
	return Vulnerability{
		ID:          result.String(m["id"]),
		Name:        result.String(m["name"]),
		Severity:    result.String(m["severity"]),
		Status:      result.String(m["status"]),
		Type:        result.String(m["type"]),
		CVE:         result.String(m["cve_id"]),
		CWE:         result.String(m["cwe_id"]),
		AssetID:     result.String(m["asset_id"]),
		AssetName:   result.String(m["asset_name"]),
		Target:      result.String(m["target"]),
		URL:         result.String(m["url"]),
		Parameter:   result.String(m["parameter"]),
		Payload:     result.String(m["payload"]),
		Evidence:    result.String(m["evidence"]),
		Description: result.String(m["description"]),
		Solution:    result.String(m["solution"]),
		References:  result.StringSlice(m["references"]),
		PocID:       result.String(m["poc_id"]),
		TaskID:      result.String(m["task_id"]),
		VerifiedAt:  result.String(m["verified_at"]),
		VerifiedBy:  result.String(m["verified_by"]),
		FixedAt:     result.String(m["fixed_at"]),
		CreatedAt:   result.String(m["created_at"]),
		UpdatedAt:   result.String(m["updated_at"]),
	}
}

type VulnQuery struct {
	PageQuery
	Severity string
	Status   string
	Type     string
	AssetID  string
	TaskID   string
}

type SeverityCounts struct {
	Critical int64 `json:"critical"`
	High     int64 `json:"high"`
	Medium   int64 `json:"medium"`
	Low      int64 `json:"low"`
	Info     int64 `json:"info"`
}

func (c SeverityCounts) Sum() int64 {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

type StatusCounts struct {
	Open          int64 `json:"open"`
	Confirmed     int64 `json:"confirmed"`
	Fixed         int64 `json:"fixed"`
	Ignored       int64 `json:"ignored"`
	FalsePositive int64 `json:"false_positive"`
}

type TrendPoint struct {
	Date string `json:"date"`
	SeverityCounts
	Total int64 `json:"total"`
}

type VulnStatistics struct {
	Total                 int64            `json:"total"`
	SeverityCounts        SeverityCounts   `json:"severityCounts"`
	StatusCounts          StatusCounts     `json:"statusCounts"`
	TypeCounts            map[string]int64 `json:"typeCounts"`
	RecentVulnerabilities []Vulnerability  `json:"recentVulnerabilities"`
	Trend                 []TrendPoint     `json:"trend"`
}

func severityCounts(m result.Record) SeverityCounts {
	return SeverityCounts{
		Critical: result.Int64(m["critical"]),
		High:     result.Int64(m["high"]),
		Medium:   result.Int64(m["medium"]),
		Low:      result.Int64(m["low"]),
		Info:     result.Int64(m["info"]),
	}
}

func toVulnStatistics(m result.Record) VulnStatistics {
	bySeverity, _ := result.AsRecord(m["by_severity"])
	byStatus, _ := result.AsRecord(m["by_status"])
	byType, _ := result.AsRecord(m["by_type"])

	out := VulnStatistics{
		Total:          result.Int64(m["total"]),
		SeverityCounts: severityCounts(bySeverity),
		StatusCounts: StatusCounts{
			Open:          result.Int64(byStatus["open"]),
			Confirmed:     result.Int64(byStatus["confirmed"]),
			Fixed:         result.Int64(byStatus["fixed"]),
			Ignored:       result.Int64(byStatus["ignored"]),
			FalsePositive: result.Int64(byStatus["false_positive"]),
		},
		TypeCounts:            make(map[string]int64, len(byType)),
		RecentVulnerabilities: []Vulnerability{},
		Trend:                 []TrendPoint{},
	}
	for k, v := range byType {
		out.TypeCounts[k] = result.Int64(v)
	}
	if list, ok := m["recent_vulns"].([]any); ok {
		for _, e := range list {
			r, _ := result.AsRecord(e)
			out.RecentVulnerabilities = append(out.RecentVulnerabilities, toVuln(r))
		}
	}
	if list, ok := m["trend_data"].([]any); ok {
		for _, e := range list {
			r, _ := result.AsRecord(e)
			sc := severityCounts(r)
			out.Trend = append(out.Trend, TrendPoint{Date: result.String(r["date"]), SeverityCounts: sc, Total: sc.Sum()})
		}
	}
	return out
}

type VerifyResult struct {
	Vulnerability Vulnerability `json:"vulnerability"`
	Verified      bool          `json:"verified"`
}

type VulnService struct {
	t Transport
}

var vulnsEndpoint = pagination.Endpoint{Path: "/vulnerabilities", DefaultPageSize: 10}

func (s *VulnService) List(ctx context.Context, q VulnQuery) (*api.Response[pagination.Page[Vulnerability]], error) {
	qq := q.query()
	delete(qq, "search")
	qq["severity"] = q.Severity
	qq["status"] = q.Status
	qq["type"] = q.Type
	qq["assetId"] = q.AssetID
	qq["taskId"] = q.TaskID
	return pagination.Fetch(ctx, s.t, vulnsEndpoint, qq, toVuln)
}

func (s *VulnService) Get(ctx context.Context, id string) (*api.Response[Vulnerability], error) {
	return api.Map(ctx, s.t, http.MethodGet, pathf("/vulnerabilities/%s", id), nil, nil, toVuln)
}

func (s *VulnService) Update(ctx context.Context, id string, fields map[string]any) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPut, pathf("/vulnerabilities/%s", id), nil, fields)
}

func (s *VulnService) Delete(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/vulnerabilities/%s", id), nil, nil)
}

func (s *VulnService) BatchUpdateStatus(ctx context.Context, ids []string, status string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, "/vulnerabilities/batch-update", nil, map[string]any{"vuln_ids": ids, "status": status})
}

func (s *VulnService) Verify(ctx context.Context, id string) (*api.Response[VerifyResult], error) {
	return api.Map(ctx, s.t, http.MethodPost, pathf("/vulnerabilities/%s/verify", id), nil, nil, func(m map[string]any) VerifyResult {
		v, _ := result.AsRecord(m["vulnerability"])
		return VerifyResult{Vulnerability: toVuln(v), Verified: result.Bool(m["verified"])}
	})
}

// Statistics reshapes the backend breakdown. Each trend point's total is
// the sum of its severities.
func (s *VulnService) Statistics(ctx context.Context, workspaceID string) (*api.Response[VulnStatistics], error) {
	var q url.Values
	if workspaceID != "" {
		q = url.Values{"workspace_id": {workspaceID}}
	}
	return api.Map(ctx, s.t, http.MethodGet, "/vulnerabilities/statistics", q, nil, toVulnStatistics)
}

func (s *VulnService) Stats(ctx context.Context) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodGet, "/vulnerabilities/stats", nil, nil)
}

func (s *VulnService) Export(ctx context.Context, severity, status string, w io.Writer) (int64, error) {
	q := url.Values{}
	if severity != "" {
		q.Set("severity", severity)
	}
	if status != "" {
		q.Set("status", status)
	}
	return s.t.Download(ctx, "/vulnerabilities/export", q, w)
}
