package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zan8in/moongazing/pkg/api"
)

func deadConsole(t *testing.T) *Console {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	return New(api.NewClient(url, api.ClientOptions{}), nil)
}

func TestQueueTypesFallbackOnTransportFailure(t *testing.T) {
	c := deadConsole(t)
	resp := c.Queue.Types(context.Background())
	if got := marshal(t, resp); got != `{"code":0,"message":"Queue service not available","data":[]}` {
		t.Fatalf("fallback mismatch: %s", got)
	}
}

func TestQueueFallbackZeroValues(t *testing.T) {
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":503,"message":"redis not configured"}`))
	})
	ctx := context.Background()

	for name, tc := range map[string]struct {
		got  any
		want string
	}{
		"stats":      {c.Queue.Stats(ctx).Data, `{"pending":0,"processing":0,"completed":0,"failed":0,"deadletter":0,"totalProcessed":0,"averageProcessTime":0,"workersActive":0,"workersTotal":0}`},
		"pending":    {c.Queue.Pending(ctx, 1, 10, "").Data, `{"list":[],"total":0}`},
		"processing": {c.Queue.Processing(ctx).Data, `[]`},
		"deadletter": {c.Queue.DeadLetter(ctx, 1, 10).Data, `{"list":[],"total":0}`},
		"workers":    {c.Queue.Workers(ctx).Data, `{"active":0,"total":0,"workers":[]}`},
	} {
		if got := marshal(t, tc.got); got != tc.want {
			t.Fatalf("%s fallback mismatch:\n got=%s\nwant=%s", name, got, tc.want)
		}
	}

	if ov := c.Queue.Overview(ctx); ov.Available {
		t.Fatalf("overview must report the queue as unavailable")
	}
}

func TestQueuePassThrough(t *testing.T) {
	var gotQuery string
	c, _ := newConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/queue/types":
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": []any{map[string]any{"id": "scan", "name": "Scan"}}})
		case "/queue/tasks/pending":
			gotQuery = r.URL.RawQuery
			writeJSON(w, map[string]any{"code": 0, "message": "ok", "data": map[string]any{"list": []any{map[string]any{"id": "q1"}}, "total": 1}})
		}
	})
	ctx := context.Background()

	types := c.Queue.Types(ctx)
	if types.Message != "ok" || len(types.Data) != 1 || types.Data[0].ID != "scan" {
		t.Fatalf("types mismatch: %+v", types)
	}
	pending := c.Queue.Pending(ctx, 2, 5, "scan")
	if pending.Data.Total != 1 || pending.Data.List[0].ID != "q1" {
		t.Fatalf("pending mismatch: %+v", pending.Data)
	}
	if gotQuery != "page=2&pageSize=5&type=scan" {
		t.Fatalf("query mismatch: %q", gotQuery)
	}
}

func TestQueueMutationsPropagateErrors(t *testing.T) {
	c := deadConsole(t)
	ctx := context.Background()
	if _, err := c.Queue.Enqueue(ctx, "scan", map[string]any{"target": "x"}, 0); err == nil {
		t.Fatalf("enqueue must fail")
	}
	if _, err := c.Queue.ClearDeadLetter(ctx); err == nil {
		t.Fatalf("clear must fail")
	}
	if _, err := c.Queue.Cancel(ctx, "q1"); err == nil {
		t.Fatalf("cancel must fail")
	}
}
