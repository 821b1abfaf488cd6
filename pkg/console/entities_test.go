package console

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestAssetMapperKeepsBackendFields(t *testing.T) {
	a := toAsset(map[string]any{
		"id": "a1", "title": "Main site", "value": "https://example.com", "type": "web",
		"group_id": "g1", "last_scan_time": "2024-01-01", "web_info": map[string]any{"title": "Example"},
	})
	if a.Name != "Main site" || a.Target != "https://example.com" || a.Status != "active" || a.GroupID != "g1" {
		t.Fatalf("asset mismatch: %+v", a)
	}
	if a.Tags == nil {
		t.Fatalf("tags must default to an empty list")
	}
	out := marshal(t, a)
	for _, want := range []string{`"name":"Main site"`, `"target":"https://example.com"`, `"web_info":{"title":"Example"}`, `"title":"Main site"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("marshalled asset lacks %s: %s", want, out)
		}
	}
}

func TestAssetListTranslatesFilters(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{}})
	})
	resp, err := c.Assets.List(context.Background(), AssetQuery{
		PageQuery: PageQuery{Search: "example"},
		GroupID:   "g1",
		Tags:      []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if q != "group_id=g1&keyword=example&page=1&page_size=10&tags=a%2Cb" {
		t.Fatalf("query mismatch: %q", q)
	}
	if resp.Data.PageSize != 10 || resp.Data.Page != 1 {
		t.Fatalf("defaults mismatch: %+v", resp.Data)
	}
}

func TestAssetCreatePayload(t *testing.T) {
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		body = readBody(t, r)
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "a1", "title": "n", "value": "v", "status": "inactive"}})
	})
	resp, err := c.Assets.Create(context.Background(), AssetInput{Type: "domain", Target: "v", Name: "n", GroupID: "g1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if body["value"] != "v" || body["title"] != "n" || body["group_id"] != "g1" {
		t.Fatalf("payload mismatch: %#v", body)
	}
	if _, ok := body["tags"]; ok {
		t.Fatalf("unset tags must not be sent: %#v", body)
	}
	if resp.Data.Status != "inactive" || resp.Data.Target != "v" {
		t.Fatalf("answer not mapped: %+v", resp.Data)
	}
}

func TestAssetExportStreams(t *testing.T) {
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("id,value\n"))
	})
	var buf bytes.Buffer
	if _, err := c.Assets.Export(context.Background(), "web", "", &buf); err != nil || buf.String() != "id,value\n" {
		t.Fatalf("export mismatch: %q err=%v", buf.String(), err)
	}
}

func TestTaskMapper(t *testing.T) {
	task := toTask(map[string]any{
		"id": "t1", "name": "scan",
		"config": map[string]any{
			"scan_types": []any{"port", "vuln"}, "port_range": "1-1000", "port_scan_rate": float64(500),
			"concurrent": float64(10), "poc_ids": []any{"p1"},
		},
		"result_stats": map[string]any{"total_targets": float64(4), "vulnerabilities_found": float64(2)},
		"last_error":   "boom",
		"targets":      []any{"example.com"},
	})
	if task.Status != "pending" || task.Progress != 0 {
		t.Fatalf("defaults mismatch: %+v", task)
	}
	if task.Config.RateLimit != 500 || task.Config.PortRange != "1-1000" || len(task.Config.ScanTypes) != 2 || task.Config.PocIDs[0] != "p1" {
		t.Fatalf("config mismatch: %+v", task.Config)
	}
	if task.Results.TotalAssets != 4 || task.Results.Vulnerabilities != 2 || task.Error != "boom" {
		t.Fatalf("stats mismatch: %+v", task)
	}

	empty := toTask(map[string]any{"id": "t2"})
	if empty.Config.ScanTypes == nil || empty.Targets == nil {
		t.Fatalf("lists must default to empty: %+v", empty)
	}
}

func TestTaskCreatePayload(t *testing.T) {
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		body = readBody(t, r)
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "t1"}})
	})
	_, err := c.Tasks.Create(context.Background(), TaskInput{
		Name: "scan", Type: "full", Targets: []string{"example.com"}, TargetType: "domain",
		Config: TaskConfig{ScanTypes: []string{"port"}, RateLimit: 300, Concurrent: 8, PortRange: "top1000"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cfg, _ := body["config"].(map[string]any)
	if body["target_type"] != "domain" || cfg["port_scan_rate"] != float64(300) || cfg["threads"] != float64(8) || cfg["port_range"] != "top1000" {
		t.Fatalf("payload mismatch: %#v", body)
	}
	if _, ok := cfg["concurrent"]; ok {
		t.Fatalf("concurrent must be renamed to threads: %#v", cfg)
	}
	if _, ok := cfg["timeout"]; ok {
		t.Fatalf("unset timeout must not be sent: %#v", cfg)
	}
}

func TestTaskActionsAndLogs(t *testing.T) {
	var paths []string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/tasks/t1/logs" {
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{map[string]any{"id": "l1", "created_at": "2024-01-01T00:00:00Z"}}, "total": 1})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "t1"}})
	})
	ctx := context.Background()
	for _, a := range []TaskAction{TaskStart, TaskPause, TaskResume, TaskCancel, TaskRetry} {
		if _, err := c.Tasks.Do(ctx, "t1", a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	logs, err := c.Tasks.Logs(ctx, "t1", PageQuery{})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if logs.Data.List[0].Timestamp != "2024-01-01T00:00:00Z" {
		t.Fatalf("timestamp must fall back to created_at: %+v", logs.Data.List[0])
	}
	want := []string{"POST /tasks/t1/start", "POST /tasks/t1/pause", "POST /tasks/t1/resume", "POST /tasks/t1/cancel", "POST /tasks/t1/retry", "GET /tasks/t1/logs"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("paths mismatch: %v", paths)
	}
	if TaskAction("explode").Valid() {
		t.Fatalf("unknown action must be invalid")
	}
}

func TestVulnStatisticsTrendTotals(t *testing.T) {
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("workspace_id") != "w1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{
			"total":        7,
			"by_severity":  map[string]any{"critical": 1, "high": 2},
			"by_status":    map[string]any{"open": 5, "false_positive": 2},
			"by_type":      map[string]any{"xss": 3},
			"recent_vulns": []any{map[string]any{"id": "v1", "cve_id": "CVE-2024-1", "asset_id": "a1"}},
			"trend_data":   []any{map[string]any{"date": "2024-01-01", "critical": 1, "high": 2, "low": 4}},
		}})
	})
	resp, err := c.Vulns.Statistics(context.Background(), "w1")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	s := resp.Data
	if s.Total != 7 || s.SeverityCounts.High != 2 || s.SeverityCounts.Info != 0 || s.StatusCounts.FalsePositive != 2 || s.TypeCounts["xss"] != 3 {
		t.Fatalf("counts mismatch: %+v", s)
	}
	if s.RecentVulnerabilities[0].CVE != "CVE-2024-1" || s.RecentVulnerabilities[0].AssetID != "a1" {
		t.Fatalf("recent mismatch: %+v", s.RecentVulnerabilities)
	}
	if len(s.Trend) != 1 || s.Trend[0].Total != 7 {
		t.Fatalf("trend total must be the severity sum: %+v", s.Trend)
	}
	if !strings.Contains(marshal(t, s.Trend[0]), `"critical":1`) {
		t.Fatalf("trend point must flatten severities: %s", marshal(t, s.Trend[0]))
	}
}

func TestVulnBatchUpdateAndVerify(t *testing.T) {
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/vulnerabilities/v1/verify" {
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"vulnerability": map[string]any{"id": "v1", "cwe_id": "CWE-79"}, "verified": true}})
			return
		}
		body = readBody(t, r)
		writeJSON(w, map[string]any{"code": 0, "message": "ok"})
	})
	ctx := context.Background()
	if _, err := c.Vulns.BatchUpdateStatus(ctx, []string{"v1", "v2"}, "fixed"); err != nil {
		t.Fatalf("batch update: %v", err)
	}
	ids, _ := body["vuln_ids"].([]any)
	if len(ids) != 2 || body["status"] != "fixed" {
		t.Fatalf("batch payload mismatch: %#v", body)
	}
	v, err := c.Vulns.Verify(ctx, "v1")
	if err != nil || !v.Data.Verified || v.Data.Vulnerability.CWE != "CWE-79" {
		t.Fatalf("verify mismatch: %+v err=%v", v, err)
	}
}

func TestPocCreateDefaults(t *testing.T) {
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		body = readBody(t, r)
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "p1", "cve_id": []any{"CVE-2024-2"}, "enabled": true}})
	})
	ctx := context.Background()
	resp, err := c.Pocs.Create(ctx, PocInput{Name: "x", Type: "nuclei", Severity: "high", Content: "id: x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if body["enabled"] != true {
		t.Fatalf("enabled must default to true: %#v", body)
	}
	if cve, ok := body["cve_id"].([]any); !ok || len(cve) != 0 {
		t.Fatalf("cve_id must be an empty list: %#v", body["cve_id"])
	}
	if resp.Data.CveID != "CVE-2024-2" {
		t.Fatalf("cve from list mismatch: %+v", resp.Data)
	}

	_, _ = c.Pocs.Create(ctx, PocInput{Name: "y", CveID: "CVE-2024-3", Enabled: boolPtr(false)})
	if cve, _ := body["cve_id"].([]any); len(cve) != 1 || cve[0] != "CVE-2024-3" || body["enabled"] != false {
		t.Fatalf("explicit values mismatch: %#v", body)
	}

	_, _ = c.Pocs.Update(ctx, "p1", PocInput{Severity: "low"})
	if len(body) != 1 || body["severity"] != "low" {
		t.Fatalf("update must send only set fields: %#v", body)
	}
}

func TestPocListSendsSearch(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{}})
	})
	enabled := true
	if _, err := c.Pocs.List(context.Background(), PocQuery{PageQuery: PageQuery{Search: "spring"}, Enabled: &enabled}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if q != "enabled=true&page=1&page_size=20&search=spring" {
		t.Fatalf("query mismatch: %q", q)
	}
}

func TestNodeMapper(t *testing.T) {
	n := toNode(map[string]any{
		"id": "n1", "ip_address": "10.0.0.2", "max_tasks": float64(8), "created_at": "2024-01-01",
		"system_info": map[string]any{"cpu_usage": 12.5, "memory_usage": 40.0},
	})
	if n.IPAddress != "10.0.0.2" || n.MaxConcurrency != 8 || n.CPUUsage != 12.5 || n.MemoryUsage != 40 || n.RegisteredAt != "2024-01-01" {
		t.Fatalf("node mismatch: %+v", n)
	}
	if z := toNode(map[string]any{"id": "n2"}); z.CPUUsage != 0 || z.Capabilities == nil {
		t.Fatalf("defaults mismatch: %+v", z)
	}
}

func TestCruiseListObjectForm(t *testing.T) {
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{
			"items": []any{map[string]any{"id": "c1", "cron_expr": "0 * * * *", "run_count": 3}},
			"total": 11, "page": 2, "pageSize": 5,
		}})
	})
	resp, err := c.Cruise.List(context.Background(), PageQuery{Page: 2, PageSize: 5})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	d := resp.Data
	if d.Total != 11 || d.Page != 2 || d.PageSize != 5 || d.List[0].CronExpr != "0 * * * *" || d.List[0].RunCount != 3 {
		t.Fatalf("cruise page mismatch: %+v", d)
	}
}

func TestDashboardDefaults(t *testing.T) {
	var qs []string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		qs = append(qs, r.URL.Path+"?"+r.URL.RawQuery)
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{}})
	})
	ctx := context.Background()
	_, _ = c.Dashboard.Activities(ctx, 0)
	_, _ = c.Dashboard.Trends(ctx, 0)
	_, _ = c.Dashboard.TopVulnerabilities(ctx, 3)
	want := "/dashboard/activities?limit=10,/dashboard/trends?days=7,/dashboard/top-vulnerabilities?limit=3"
	if strings.Join(qs, ",") != want {
		t.Fatalf("queries mismatch: %v", qs)
	}
}

func TestAssetListSendsStatus(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{}})
	})
	if _, err := c.Assets.List(context.Background(), AssetQuery{Status: "inactive", Type: "web"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if q != "page=1&page_size=10&status=inactive&type=web" {
		t.Fatalf("query mismatch: %q", q)
	}
}

func TestNodeListDropsSearch(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{map[string]any{"id": "n1", "status": "online"}}, "total": 1})
	})
	resp, err := c.Nodes.List(context.Background(), NodeQuery{PageQuery: PageQuery{Search: "x"}, Status: "online"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if q != "page=1&page_size=10&status=online" {
		t.Fatalf("query mismatch: %q", q)
	}
	if resp.Data.Total != 1 || resp.Data.List[0].ID != "n1" {
		t.Fatalf("page mismatch: %+v", resp.Data)
	}
}

func TestPluginListAndToggle(t *testing.T) {
	var reqs []string
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		if r.Method == http.MethodPut {
			body = readBody(t, r)
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "pl1"}})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{map[string]any{"id": "pl1", "name": "nmap"}}, "total": 1})
	})
	ctx := context.Background()
	resp, err := c.Plugins.List(ctx, PluginQuery{PageQuery: PageQuery{Search: "n"}, Type: "scanner", Enabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Data.List[0].Name != "nmap" || resp.Data.List[0].Capabilities == nil {
		t.Fatalf("plugin mismatch: %+v", resp.Data.List[0])
	}
	if _, err := c.Plugins.Toggle(ctx, "pl1", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := "GET /plugins?enabled=false&page=1&page_size=10&type=scanner,PUT /plugins/pl1/toggle?"
	if strings.Join(reqs, ",") != want {
		t.Fatalf("requests mismatch: %v", reqs)
	}
	if body["enabled"] != true {
		t.Fatalf("toggle payload mismatch: %#v", body)
	}
}

func TestCruiseLogsAndActions(t *testing.T) {
	var reqs []string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"items": []any{}, "total": 0}})
	})
	ctx := context.Background()
	if _, err := c.Cruise.Logs(ctx, "c1", PageQuery{PageSize: 5}); err != nil {
		t.Fatalf("logs: %v", err)
	}
	if _, err := c.Cruise.Enable(ctx, "c1"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if _, err := c.Cruise.Disable(ctx, "c1"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	want := "GET /cruises/c1/logs?page=1&pageSize=5,POST /cruises/c1/enable?,POST /cruises/c1/disable?"
	if strings.Join(reqs, ",") != want {
		t.Fatalf("requests mismatch: %v", reqs)
	}
}

func TestNotifyKeepsCamelKeys(t *testing.T) {
	var reqs []string
	var bodies []map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		if r.Method != http.MethodGet {
			bodies = append(bodies, readBody(t, r))
			writeJSON(w, map[string]any{"code": 0, "message": "ok"})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{
			map[string]any{"id": "m1", "channelId": "c1", "channelName": "ops", "status": "failed"},
		}, "total": 1})
	})
	ctx := context.Background()
	resp, err := c.Notify.History(ctx, NotifyHistoryQuery{PageQuery: PageQuery{Search: "disk"}, ChannelID: "c1", Status: "failed"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if resp.Data.List[0].ChannelName != "ops" || resp.Data.List[0].ChannelID != "c1" {
		t.Fatalf("history mismatch: %+v", resp.Data.List)
	}
	if _, err := c.Notify.Send(ctx, "c1", "disk full", "95%", "warning"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := c.Notify.ToggleChannel(ctx, "c1", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := "GET /notify/history?channelId=c1&page=1&pageSize=10&search=disk&status=failed,POST /notify/send?,PUT /notify/channels/c1/toggle?"
	if strings.Join(reqs, ",") != want {
		t.Fatalf("requests mismatch: %v", reqs)
	}
	if b := bodies[0]; b["channelId"] != "c1" || b["title"] != "disk full" || b["level"] != "warning" {
		t.Fatalf("send payload mismatch: %#v", b)
	}
	if bodies[1]["enabled"] != false {
		t.Fatalf("toggle payload mismatch: %#v", bodies[1])
	}
}

func TestMonitorChangesQueryAndPagePayload(t *testing.T) {
	var reqs []string
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		switch r.Method {
		case http.MethodPost:
			body = readBody(t, r)
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"id": "p1", "monitorTypes": []any{"content"}}})
		default:
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{
				map[string]any{"id": "ch1", "pageId": "p1", "changeType": "content", "acknowledged": false},
			}, "total": 1})
		}
	})
	ctx := context.Background()
	resp, err := c.Monitor.Changes(ctx, ChangeQuery{
		PageQuery:    PageQuery{Search: "ignored"},
		PageID:       "p1",
		ChangeType:   "content",
		Acknowledged: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("changes: %v", err)
	}
	if ch := resp.Data.List[0]; ch.PageID != "p1" || ch.ChangeType != "content" {
		t.Fatalf("change mismatch: %+v", ch)
	}
	page, err := c.Monitor.AddPage(ctx, PageInput{URL: "https://example.com", Name: "home", Interval: 60, MonitorTypes: []string{"content"}})
	if err != nil {
		t.Fatalf("add page: %v", err)
	}
	if page.Data.ID != "p1" || len(page.Data.MonitorTypes) != 1 {
		t.Fatalf("page mismatch: %+v", page.Data)
	}
	want := "GET /monitor/changes?acknowledged=false&changeType=content&page=1&pageId=p1&pageSize=10,POST /monitor/pages?"
	if strings.Join(reqs, ",") != want {
		t.Fatalf("requests mismatch: %v", reqs)
	}
	if types, _ := body["monitorTypes"].([]any); len(types) != 1 || body["interval"] != float64(60) {
		t.Fatalf("page payload mismatch: %#v", body)
	}
	if _, ok := body["keywords"]; ok {
		t.Fatalf("unset keywords must not be sent: %#v", body)
	}
}

func TestMonitorCompareQuery(t *testing.T) {
	var q string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		q = r.URL.Path + "?" + r.URL.RawQuery
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"diff": "-a\n+b", "changes": []any{"title"}}})
	})
	resp, err := c.Monitor.Compare(context.Background(), "s1", "s2")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if q != "/monitor/snapshots/compare?id1=s1&id2=s2" || resp.Data.Changes[0] != "title" {
		t.Fatalf("compare mismatch: %s %+v", q, resp.Data)
	}
}

func TestTakeoverHistoryAndBatch(t *testing.T) {
	var reqs []string
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		if r.Method == http.MethodPost {
			body = readBody(t, r)
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{
				"total": 2, "vulnerable": 1,
				"results": []any{map[string]any{"domain": "a.example.com", "vulnerable": true, "provider": "github"}},
			}})
			return
		}
		writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{}, "total": 0})
	})
	ctx := context.Background()
	if _, err := c.Takeover.History(ctx, PageQuery{Search: "x"}, boolPtr(true)); err != nil {
		t.Fatalf("history: %v", err)
	}
	resp, err := c.Takeover.BatchCheck(ctx, []string{"a.example.com", "b.example.com"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := "GET /scan/takeover/history?page=1&pageSize=10&vulnerable=true,POST /scan/takeover/batch?"
	if strings.Join(reqs, ",") != want {
		t.Fatalf("requests mismatch: %v", reqs)
	}
	if domains, _ := body["domains"].([]any); len(domains) != 2 {
		t.Fatalf("batch payload mismatch: %#v", body)
	}
	if resp.Data.Vulnerable != 1 || resp.Data.Results[0].Provider != "github" {
		t.Fatalf("batch answer mismatch: %+v", resp.Data)
	}
}

func TestSettingsThirdParty(t *testing.T) {
	var body map[string]any
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut:
			body = readBody(t, r)
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"message": "saved", "configured_sources": []any{"fofa"}}})
		case r.URL.Path == "/thirdparty/sources":
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"sources": nil}})
		default:
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"config": map[string]any{"fofa_email": "a@b.c"}}})
		}
	})
	ctx := context.Background()
	cfg, err := c.Settings.ThirdParty(ctx)
	if err != nil || cfg.Data.FofaEmail != "a@b.c" {
		t.Fatalf("config mismatch: %+v err=%v", cfg, err)
	}
	upd, err := c.Settings.UpdateThirdParty(ctx, ThirdPartyConfig{FofaKey: "k"})
	if err != nil || upd.Data.ConfiguredSources[0] != "fofa" {
		t.Fatalf("update mismatch: %+v err=%v", upd, err)
	}
	if len(body) != 1 || body["fofa_key"] != "k" {
		t.Fatalf("update must send only set keys: %#v", body)
	}
	src, err := c.Settings.Sources(ctx)
	if err != nil || src.Data == nil || len(src.Data) != 0 {
		t.Fatalf("sources must default to empty: %#v err=%v", src, err)
	}
}
