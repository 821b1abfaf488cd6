package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	db2 "github.com/zan8in/moongazing/pkg/db"
	"github.com/zan8in/moongazing/pkg/result"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func row(t *testing.T, kind result.Kind, rec result.Record) db2.ResultData {
	t.Helper()
	r, err := db2.FromRecord(kind, rec)
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	return r
}

func TestUpsertStates(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	rec := result.Record{"id": "v1", "taskId": "t1", "name": "sqli", "severity": "HIGH"}
	st, err := s.Upsert(ctx, row(t, result.KindVuln, rec))
	if err != nil || st != db2.Inserted {
		t.Fatalf("first upsert: state=%v err=%v", st, err)
	}
	st, _ = s.Upsert(ctx, row(t, result.KindVuln, rec))
	if st != db2.Unchanged {
		t.Fatalf("same record must be unchanged, got %v", st)
	}
	rec["evidence"] = "id=1'"
	st, _ = s.Upsert(ctx, row(t, result.KindVuln, rec))
	if st != db2.Changed {
		t.Fatalf("edited record must be changed, got %v", st)
	}

	got, err := s.GetByID(ctx, "v1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Severity != "high" || got.Title != "sqli" || got.Record["evidence"] != "id=1'" {
		t.Fatalf("row mismatch: %+v", got)
	}
}

func TestSelectAndCountFilters(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, r := range []struct {
		kind result.Kind
		rec  result.Record
	}{
		{result.KindVuln, result.Record{"id": "v1", "taskId": "t1", "name": "sqli", "severity": "high"}},
		{result.KindVuln, result.Record{"id": "v2", "taskId": "t1", "name": "xss", "severity": "low"}},
		{result.KindSubdomain, result.Record{"id": "s1", "taskId": "t1", "subdomain": "www.example.com"}},
		{result.KindVuln, result.Record{"id": "v3", "taskId": "t2", "name": "rce", "severity": "critical"}},
	} {
		if _, err := s.Upsert(ctx, row(t, r.kind, r.rec)); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	n, _ := s.CountFiltered(ctx, Filter{TaskID: "t1"})
	if n != 3 {
		t.Fatalf("t1 count = %d", n)
	}
	n, _ = s.CountFiltered(ctx, Filter{Kind: "vuln", Severity: "high, critical"})
	if n != 2 {
		t.Fatalf("severity count = %d", n)
	}
	n, _ = s.CountFiltered(ctx, Filter{Severity: "info,low,medium,high,critical"})
	if n != 4 {
		t.Fatalf("five severities must mean all, got %d", n)
	}

	rows, err := s.SelectPage(ctx, Filter{Keyword: "example"}, 1, 10)
	if err != nil || len(rows) != 1 || rows[0].ID != "s1" || rows[0].Record["subdomain"] != "www.example.com" {
		t.Fatalf("keyword select: %+v err=%v", rows, err)
	}

	deleted, err := s.DeleteTask(ctx, "t2")
	if err != nil || deleted != 1 {
		t.Fatalf("delete: %d %v", deleted, err)
	}
}

func TestQueuedWritesDrainOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queued.db")
	s, err := Open("", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 20; i++ {
		s.SetResultX(row(t, result.KindPort, result.Record{"id": "p" + string(rune('a'+i)), "taskId": "t1", "ip": "10.0.0.1"}))
	}
	s.Close()

	s, err = Open("sqlite3", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if n, _ := s.CountFiltered(ctx, Filter{Kind: "port"}); n != 20 {
		t.Fatalf("queued rows = %d, want 20", n)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}
