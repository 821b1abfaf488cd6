// Package webhook holds what the alert bots share: which results alert and
// how they are summarized.
package webhook

import (
	"strings"

	"github.com/zan8in/moongazing/pkg/result"
	"github.com/zan8in/moongazing/pkg/utils"
)

// Alert is the summary pushed to a bot.
type Alert struct {
	Kind     result.Kind
	ID       string
	Name     string
	Severity string
	Target   string
	Detail   string
}

// Sender pushes one alert. Implementations filter by their own range.
type Sender interface {
	Send(a Alert) error
}

// FromRecord summarizes a normalized vuln or takeover record. The second
// return is false for other kinds and for takeover checks that were not
// vulnerable.
func FromRecord(kind result.Kind, rec result.Record) (Alert, bool) {
	a := Alert{Kind: kind, ID: result.Envelope(rec).ID}
	switch kind {
	case result.KindVuln:
		a.Name = first(rec, "vuln_id", "name")
		a.Severity = result.String(rec["severity"])
		a.Target = first(rec, "matched_at", "url", "target")
		a.Detail = result.String(rec["description"])
	case result.KindTakeover:
		if !result.Truthy(rec["vulnerable"]) {
			return Alert{}, false
		}
		a.Name = "subdomain-takeover"
		if p := result.String(rec["provider"]); p != "" {
			a.Name += "-" + strings.ToLower(p)
		}
		a.Severity = result.String(rec["severity"])
		if a.Severity == "" {
			a.Severity = "high"
		}
		a.Target = first(rec, "subdomain", "domain")
		a.Detail = first(rec, "cname", "evidence")
	default:
		return Alert{}, false
	}
	if a.Name == "" {
		a.Name = a.ID
	}
	a.Severity = strings.ToLower(strings.TrimSpace(a.Severity))
	return a, true
}

// InRange reports whether a's severity falls in the comma range, eg
// "high,critical" or a single level. Blank means info..critical.
func (a Alert) InRange(rang string) bool {
	return utils.ParseSeverityRange(rang).Contains(a.Severity)
}

func first(rec result.Record, keys ...string) string {
	for _, k := range keys {
		if s := result.String(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

// NormalizeStringSlice trims entries and drops blanks.
func NormalizeStringSlice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func IsTokensEmpty(tokens []string) bool {
	return len(NormalizeStringSlice(tokens)) == 0
}
