package result

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, s string) Record {
	t.Helper()
	var r Record
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return r
}

func TestNormalizeEnvelopeOnly(t *testing.T) {
	in := decode(t, `{"_id":"r1","task_id":"t1","type":"domain","created_at":"2024-01-01T00:00:00Z"}`)
	out := Normalize(in)

	want := Record{
		"id":        "r1",
		"taskId":    "t1",
		"type":      "domain",
		"tags":      []any{},
		"project":   "",
		"source":    "",
		"createdAt": "2024-01-01T00:00:00Z",
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("envelope mismatch:\n got=%#v\nwant=%#v", out, want)
	}

	again := Normalize(out)
	if _, ok := again["data"]; ok {
		t.Fatalf("second pass must not invent data")
	}
	if again["project"] != "" || again["source"] != "" {
		t.Fatalf("second pass lost defaults: %#v", again)
	}
}

func TestNormalizeIDPrefersID(t *testing.T) {
	out := Normalize(Record{"id": "a", "_id": "b"})
	if out["id"] != "a" {
		t.Fatalf("id mismatch: got=%v", out["id"])
	}
	if _, ok := Normalize(Record{})["id"]; ok {
		t.Fatalf("id must stay absent when neither id nor _id is present")
	}
}

func TestNormalizeNullEnvelopeFields(t *testing.T) {
	out := Normalize(decode(t, `{"id":null,"_id":"abc","tags":null,"project":null,"source":null}`))
	if out["id"] != "abc" {
		t.Fatalf("null id should fall back to _id, got=%v", out["id"])
	}
	if tags, ok := out["tags"].([]any); !ok || len(tags) != 0 {
		t.Fatalf("null tags should default to empty, got=%#v", out["tags"])
	}
	if out["project"] != "" || out["source"] != "" {
		t.Fatalf("null project/source should default to empty: %#v", out)
	}
	if _, ok := Normalize(decode(t, `{"id":null}`))["id"]; ok {
		t.Fatalf("a null id without _id must stay absent")
	}
}

func TestNormalizeSubdomainComposition(t *testing.T) {
	t.Run("full_domain wins", func(t *testing.T) {
		out := Normalize(decode(t, `{"data":{"full_domain":"a.b.com","subdomain":"a","domain":"b.com"}}`))
		if out["subdomain"] != "a.b.com" || out["fullDomain"] != "a.b.com" {
			t.Fatalf("unexpected subdomain fields: %v %v", out["subdomain"], out["fullDomain"])
		}
		if out["domain"] != "b.com" {
			t.Fatalf("domain pass-through lost: %v", out["domain"])
		}
	})
	t.Run("concatenation", func(t *testing.T) {
		out := Normalize(decode(t, `{"data":{"subdomain":"a","domain":"b.com"}}`))
		if out["subdomain"] != "a.b.com" || out["fullDomain"] != "a.b.com" {
			t.Fatalf("unexpected subdomain fields: %v %v", out["subdomain"], out["fullDomain"])
		}
	})
	t.Run("unqualified", func(t *testing.T) {
		out := Normalize(decode(t, `{"data":{"subdomain":"a"}}`))
		if out["subdomain"] != "a" {
			t.Fatalf("subdomain mismatch: %v", out["subdomain"])
		}
		if _, ok := out["fullDomain"]; ok {
			t.Fatalf("fullDomain must be absent for a bare subdomain")
		}
	})
}

func TestNormalizeIPs(t *testing.T) {
	out := Normalize(decode(t, `{"data":{"ip":"1.1.1.1","ips":["2.2.2.2"]}}`))
	if !reflect.DeepEqual(out["ips"], []any{"2.2.2.2"}) {
		t.Fatalf("explicit ips must win: %#v", out["ips"])
	}
	if out["ip"] != "1.1.1.1" {
		t.Fatalf("ip mismatch: %v", out["ip"])
	}

	out = Normalize(decode(t, `{"data":{"ip":"1.1.1.1"}}`))
	if !reflect.DeepEqual(out["ips"], []any{"1.1.1.1"}) {
		t.Fatalf("singleton ips mismatch: %#v", out["ips"])
	}

	out = Normalize(decode(t, `{"data":{"ip":""}}`))
	if _, ok := out["ips"]; ok {
		t.Fatalf("empty ip must not derive ips")
	}

	out = Normalize(decode(t, `{"data":{"host":"10.0.0.1"}}`))
	if out["ip"] != "10.0.0.1" || out["host"] != "10.0.0.1" {
		t.Fatalf("host must be exposed as ip: %#v", out)
	}
}

func TestNormalizeStatusCode(t *testing.T) {
	cases := []struct {
		name string
		data string
		want any
		set  bool
	}{
		{"alive without status", `{"alive":true}`, 0, true},
		{"alive false", `{"alive":false}`, nil, false},
		{"status_code only", `{"status_code":301}`, float64(301), true},
		{"http_status wins", `{"status_code":301,"http_status":200}`, float64(200), true},
		{"present zero blocks alive default", `{"status_code":0,"alive":true}`, float64(0), true},
		{"alive with http_status", `{"http_status":404,"alive":true}`, float64(404), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Normalize(decode(t, `{"data":`+tc.data+`}`))
			got, ok := out["statusCode"]
			if ok != tc.set {
				t.Fatalf("statusCode presence mismatch: got=%v want=%v", ok, tc.set)
			}
			if ok && got != tc.want {
				t.Fatalf("statusCode mismatch: got=%#v want=%#v", got, tc.want)
			}
		})
	}
}

func TestNormalizePromotions(t *testing.T) {
	in := decode(t, `{
		"id":"x","type":"subdomain","project":"p1",
		"data":{
			"icp_type":"company","content_type":"text/html","web_server":"nginx",
			"cdn_provider":"cf","cdn_name":"cloudflare","is_alive":true,"is_backup":false,
			"is_config":true,"is_api":false,"fingerprint":["nginx"],"technologies":["php"],
			"cdn":true,"vulnerable":false,"length":12,"size":34,"status":"ok",
			"unknown_key":"kept in data"
		}
	}`)
	out := Normalize(in)
	want := map[string]any{
		"icpType":      "company",
		"contentType":  "text/html",
		"webServer":    "nginx",
		"cdnProvider":  "cf",
		"cdnName":      "cloudflare",
		"isAlive":      true,
		"isBackup":     false,
		"isConfig":     true,
		"isApi":        false,
		"fingerprint":  []any{"nginx"},
		"technologies": []any{"php"},
		"cdn":          true,
		"vulnerable":   false,
		"length":       float64(12),
		"size":         float64(34),
		"status":       "ok",
		"project":      "p1",
	}
	for k, v := range want {
		if !reflect.DeepEqual(out[k], v) {
			t.Fatalf("%s mismatch: got=%#v want=%#v", k, out[k], v)
		}
	}
	if _, ok := out["unknown_key"]; ok {
		t.Fatalf("unrecognized data keys must not be promoted")
	}
	data, _ := AsRecord(out["data"])
	if data["unknown_key"] != "kept in data" {
		t.Fatalf("data must pass through unchanged")
	}
}

func TestNormalizeDataWinsOnCollision(t *testing.T) {
	out := Normalize(decode(t, `{"type":"sensitive","data":{"type":"api_key"}}`))
	if out["type"] != "api_key" {
		t.Fatalf("data-derived type must win: got=%v", out["type"])
	}
}

func TestNormalizeNonObjectData(t *testing.T) {
	out := Normalize(decode(t, `{"id":"1","data":"oops"}`))
	if out["data"] != "oops" {
		t.Fatalf("data must pass through: %#v", out["data"])
	}
	if len(out) != 5 {
		t.Fatalf("expected envelope fields only, got %#v", out)
	}
}
