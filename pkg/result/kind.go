package result

// Kind tags a scan result and decides which data keys are meaningful.
type Kind string

const (
	KindDomain    Kind = "domain"
	KindSubdomain Kind = "subdomain"
	KindTakeover  Kind = "takeover"
	KindApp       Kind = "app"
	KindMiniApp   Kind = "miniapp"
	KindURL       Kind = "url"
	KindCrawler   Kind = "crawler"
	KindSensitive Kind = "sensitive"
	KindDirScan   Kind = "dirscan"
	KindVuln      Kind = "vuln"
	KindMonitor   Kind = "monitor"
	KindPort      Kind = "port"
)

type kindEntry struct {
	kind   Kind
	fields []string
}

// registry order is the order kinds are listed everywhere else.
var registry = []kindEntry{
	{KindDomain, []string{"domain", "icp", "icp_type", "company", "province", "registrar"}},
	{KindSubdomain, []string{"subdomain", "domain", "full_domain", "url", "host", "ip", "ips", "cname", "cdn", "cdn_name", "cdn_provider", "title", "status_code", "http_status", "web_server", "technologies", "fingerprint", "alive", "is_alive"}},
	{KindTakeover, []string{"subdomain", "domain", "full_domain", "cname", "provider", "vulnerable", "severity", "description", "evidence", "fingerprint", "confidence"}},
	{KindApp, []string{"name", "version", "category", "company", "description", "url", "icp"}},
	{KindMiniApp, []string{"name", "category", "company", "description", "url", "icp"}},
	{KindURL, []string{"url", "path", "method", "status_code", "http_status", "content_type", "title", "length", "fingerprint", "technologies", "web_server", "is_api"}},
	{KindCrawler, []string{"url", "path", "method", "status_code", "http_status", "content_type", "title", "length", "is_api"}},
	{KindSensitive, []string{"url", "type", "value", "context", "location", "severity", "pattern", "matches", "category"}},
	{KindDirScan, []string{"url", "path", "status_code", "http_status", "content_type", "title", "length", "size", "redirect", "is_backup", "is_config"}},
	{KindVuln, []string{"vuln_id", "name", "severity", "target", "url", "matched_at", "description", "evidence", "category", "confidence", "vulnerable"}},
	{KindMonitor, []string{"url", "title", "status", "status_code", "length", "description"}},
	{KindPort, []string{"host", "ip", "port", "service", "state", "banner", "version", "name"}},
}

var byName = func() map[Kind]kindEntry {
	m := make(map[Kind]kindEntry, len(registry))
	for _, s := range registry {
		m[s.kind] = s
	}
	return m
}()

// Kinds returns every registered kind in registry order.
func Kinds() []Kind {
	out := make([]Kind, len(registry))
	for i, s := range registry {
		out[i] = s.kind
	}
	return out
}

// ParseKind reports whether s names a registered kind. Matching is exact.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := byName[k]
	return k, ok
}

func (k Kind) Valid() bool {
	_, ok := byName[k]
	return ok
}

// Fields lists the data keys meaningful for k. Unknown kinds have none.
func (k Kind) Fields() []string {
	s, ok := byName[k]
	if !ok {
		return nil
	}
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

func (k Kind) String() string {
	return string(k)
}

// Stats counts results per kind.
type Stats map[Kind]int64

// NewStats builds a Stats holding every kind. Kinds missing from raw count 0.
func NewStats(raw map[string]any) Stats {
	st := make(Stats, len(registry))
	for _, s := range registry {
		st[s.kind] = 0
	}
	for k, v := range raw {
		kind, ok := ParseKind(k)
		if !ok {
			continue
		}
		if n, ok := toInt64(v); ok {
			st[kind] = n
		}
	}
	return st
}

// Total sums the counts of every kind.
func (s Stats) Total() int64 {
	var n int64
	for _, v := range s {
		n += v
	}
	return n
}
