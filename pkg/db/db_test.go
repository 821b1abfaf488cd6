package db

import (
	"testing"

	"github.com/zan8in/moongazing/pkg/result"
)

func TestFingerprintIgnoresKeyOrder(t *testing.T) {
	a := result.Record{"id": "1", "name": "x", "tags": []any{"a"}}
	b := result.Record{"tags": []any{"a"}, "name": "x", "id": "1"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("fingerprint depends on key order")
	}
	b["name"] = "y"
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("fingerprint ignores values")
	}
	if len(Fingerprint(a)) != 16 {
		t.Fatalf("fingerprint must be 16 hex chars: %s", Fingerprint(a))
	}
}

func TestFromRecord(t *testing.T) {
	r, err := FromRecord(result.KindSubdomain, result.Record{"id": "s1", "taskId": "t1", "subdomain": "www.example.com", "url": "http://www.example.com"})
	if err != nil {
		t.Fatalf("from record: %v", err)
	}
	if r.Title != "www.example.com" || r.Kind != "subdomain" || r.TaskID != "t1" || r.Fingerprint == "" {
		t.Fatalf("row mismatch: %+v", r)
	}
	if _, err := FromRecord(result.KindPort, result.Record{"ip": "1.1.1.1"}); err == nil {
		t.Fatalf("expected error for record without id")
	}
	if Inserted.String() != "new" || Changed.String() != "changed" || Unchanged.String() != "unchanged" {
		t.Fatalf("state names mismatch")
	}
}
