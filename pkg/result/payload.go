package result

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Payload is the typed form of a result's data object. The concrete type
// is chosen by Kind; keys the struct does not model are kept in Extra.
type Payload interface {
	Kind() Kind
	Extras() Record
}

type extra struct {
	Extra Record `json:"-"`
}

func (e extra) Extras() Record { return e.Extra }

type DomainPayload struct {
	Domain    *string `json:"domain,omitempty"`
	ICP       *string `json:"icp,omitempty"`
	ICPType   *string `json:"icp_type,omitempty"`
	Company   *string `json:"company,omitempty"`
	Province  *string `json:"province,omitempty"`
	Registrar *string `json:"registrar,omitempty"`
	extra
}

type SubdomainPayload struct {
	Subdomain    *string  `json:"subdomain,omitempty"`
	Domain       *string  `json:"domain,omitempty"`
	FullDomain   *string  `json:"full_domain,omitempty"`
	URL          *string  `json:"url,omitempty"`
	Host         *string  `json:"host,omitempty"`
	IP           *string  `json:"ip,omitempty"`
	IPs          []string `json:"ips,omitempty"`
	CNAME        *string  `json:"cname,omitempty"`
	CDN          *bool    `json:"cdn,omitempty"`
	CDNName      *string  `json:"cdn_name,omitempty"`
	CDNProvider  *string  `json:"cdn_provider,omitempty"`
	Title        *string  `json:"title,omitempty"`
	StatusCode   *int     `json:"status_code,omitempty"`
	HTTPStatus   *int     `json:"http_status,omitempty"`
	WebServer    *string  `json:"web_server,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Fingerprint  []string `json:"fingerprint,omitempty"`
	Alive        *bool    `json:"alive,omitempty"`
	IsAlive      *bool    `json:"is_alive,omitempty"`
	extra
}

type TakeoverPayload struct {
	Subdomain   *string  `json:"subdomain,omitempty"`
	Domain      *string  `json:"domain,omitempty"`
	FullDomain  *string  `json:"full_domain,omitempty"`
	CNAME       *string  `json:"cname,omitempty"`
	Provider    *string  `json:"provider,omitempty"`
	Vulnerable  *bool    `json:"vulnerable,omitempty"`
	Severity    *string  `json:"severity,omitempty"`
	Description *string  `json:"description,omitempty"`
	Evidence    *string  `json:"evidence,omitempty"`
	Fingerprint []string `json:"fingerprint,omitempty"`
	Confidence  *string  `json:"confidence,omitempty"`
	extra
}

type AppPayload struct {
	Name        *string `json:"name,omitempty"`
	Version     *string `json:"version,omitempty"`
	Category    *string `json:"category,omitempty"`
	Company     *string `json:"company,omitempty"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
	ICP         *string `json:"icp,omitempty"`
	extra
}

type MiniAppPayload struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Company     *string `json:"company,omitempty"`
	Description *string `json:"description,omitempty"`
	URL         *string `json:"url,omitempty"`
	ICP         *string `json:"icp,omitempty"`
	extra
}

type URLPayload struct {
	URL          *string  `json:"url,omitempty"`
	Path         *string  `json:"path,omitempty"`
	Method       *string  `json:"method,omitempty"`
	StatusCode   *int     `json:"status_code,omitempty"`
	HTTPStatus   *int     `json:"http_status,omitempty"`
	ContentType  *string  `json:"content_type,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Length       *int64   `json:"length,omitempty"`
	Fingerprint  []string `json:"fingerprint,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	WebServer    *string  `json:"web_server,omitempty"`
	IsAPI        *bool    `json:"is_api,omitempty"`
	extra
}

type CrawlerPayload struct {
	URL         *string `json:"url,omitempty"`
	Path        *string `json:"path,omitempty"`
	Method      *string `json:"method,omitempty"`
	StatusCode  *int    `json:"status_code,omitempty"`
	HTTPStatus  *int    `json:"http_status,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
	Title       *string `json:"title,omitempty"`
	Length      *int64  `json:"length,omitempty"`
	IsAPI       *bool   `json:"is_api,omitempty"`
	extra
}

type SensitivePayload struct {
	URL      *string  `json:"url,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Value    *string  `json:"value,omitempty"`
	Context  *string  `json:"context,omitempty"`
	Location *string  `json:"location,omitempty"`
	Severity *string  `json:"severity,omitempty"`
	Pattern  *string  `json:"pattern,omitempty"`
	Matches  []string `json:"matches,omitempty"`
	Category *string  `json:"category,omitempty"`
	extra
}

type DirScanPayload struct {
	URL         *string `json:"url,omitempty"`
	Path        *string `json:"path,omitempty"`
	StatusCode  *int    `json:"status_code,omitempty"`
	HTTPStatus  *int    `json:"http_status,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
	Title       *string `json:"title,omitempty"`
	Length      *int64  `json:"length,omitempty"`
	Size        *int64  `json:"size,omitempty"`
	Redirect    *string `json:"redirect,omitempty"`
	IsBackup    *bool   `json:"is_backup,omitempty"`
	IsConfig    *bool   `json:"is_config,omitempty"`
	extra
}

type VulnPayload struct {
	VulnID      *string `json:"vuln_id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Severity    *string `json:"severity,omitempty"`
	Target      *string `json:"target,omitempty"`
	URL         *string `json:"url,omitempty"`
	MatchedAt   *string `json:"matched_at,omitempty"`
	Description *string `json:"description,omitempty"`
	Evidence    *string `json:"evidence,omitempty"`
	Category    *string `json:"category,omitempty"`
	Confidence  *string `json:"confidence,omitempty"`
	Vulnerable  *bool   `json:"vulnerable,omitempty"`
	extra
}

type MonitorPayload struct {
	URL         *string `json:"url,omitempty"`
	Title       *string `json:"title,omitempty"`
	Status      *string `json:"status,omitempty"`
	StatusCode  *int    `json:"status_code,omitempty"`
	Length      *int64  `json:"length,omitempty"`
	Description *string `json:"description,omitempty"`
	extra
}

type PortPayload struct {
	Host    *string `json:"host,omitempty"`
	IP      *string `json:"ip,omitempty"`
	Port    *int    `json:"port,omitempty"`
	Service *string `json:"service,omitempty"`
	State   *string `json:"state,omitempty"`
	Banner  *string `json:"banner,omitempty"`
	Version *string `json:"version,omitempty"`
	Name    *string `json:"name,omitempty"`
	extra
}

// GenericPayload holds data for unknown kinds, or data whose modelled keys
// carried unexpected types. Everything lives in Extra.
type GenericPayload struct {
	Tag Kind
	extra
}

func (DomainPayload) Kind() Kind    { return KindDomain }
func (SubdomainPayload) Kind() Kind { return KindSubdomain }
func (TakeoverPayload) Kind() Kind  { return KindTakeover }
func (AppPayload) Kind() Kind       { return KindApp }
func (MiniAppPayload) Kind() Kind   { return KindMiniApp }
func (URLPayload) Kind() Kind       { return KindURL }
func (CrawlerPayload) Kind() Kind   { return KindCrawler }
func (SensitivePayload) Kind() Kind { return KindSensitive }
func (DirScanPayload) Kind() Kind   { return KindDirScan }
func (VulnPayload) Kind() Kind      { return KindVuln }
func (MonitorPayload) Kind() Kind   { return KindMonitor }
func (PortPayload) Kind() Kind      { return KindPort }
func (g GenericPayload) Kind() Kind { return g.Tag }

func newPayload(k Kind) Payload {
	switch k {
	case KindDomain:
		return &DomainPayload{}
	case KindSubdomain:
		return &SubdomainPayload{}
	case KindTakeover:
		return &TakeoverPayload{}
	case KindApp:
		return &AppPayload{}
	case KindMiniApp:
		return &MiniAppPayload{}
	case KindURL:
		return &URLPayload{}
	case KindCrawler:
		return &CrawlerPayload{}
	case KindSensitive:
		return &SensitivePayload{}
	case KindDirScan:
		return &DirScanPayload{}
	case KindVuln:
		return &VulnPayload{}
	case KindMonitor:
		return &MonitorPayload{}
	case KindPort:
		return &PortPayload{}
	}
	return nil
}

// DecodePayload decodes data into the payload struct registered for k.
// Keys outside the kind's field set, explicit nulls and empty arrays go to Extra so
// EncodePayload can restore them. If a modelled key has a type the struct
// cannot hold, the whole object is returned as a GenericPayload.
func DecodePayload(k Kind, data Record) Payload {
	p := newPayload(k)
	if p == nil {
		return &GenericPayload{Tag: k, extra: extra{Extra: cloneRecord(data)}}
	}

	known := make(map[string]struct{}, len(byName[k].fields))
	for _, f := range byName[k].fields {
		known[f] = struct{}{}
	}
	modelled := make(Record, len(data))
	rest := make(Record)
	for key, v := range data {
		if _, ok := known[key]; ok && !skipModelled(v) {
			modelled[key] = v
			continue
		}
		rest[key] = v
	}

	b, err := json.Marshal(modelled)
	if err == nil {
		err = json.Unmarshal(b, p)
	}
	if err != nil {
		return &GenericPayload{Tag: k, extra: extra{Extra: cloneRecord(data)}}
	}
	setExtra(p, rest)
	return p
}

// EncodePayload is the inverse of DecodePayload.
func EncodePayload(p Payload) (Record, error) {
	if p == nil {
		return Record{}, nil
	}
	out := Record{}
	if _, generic := p.(*GenericPayload); !generic {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s payload", p.Kind())
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, errors.Wrapf(err, "encode %s payload", p.Kind())
		}
	}
	for k, v := range p.Extras() {
		out[k] = v
	}
	return out, nil
}

func setExtra(p Payload, rest Record) {
	if len(rest) == 0 {
		rest = nil
	}
	switch t := p.(type) {
	case *DomainPayload:
		t.Extra = rest
	case *SubdomainPayload:
		t.Extra = rest
	case *TakeoverPayload:
		t.Extra = rest
	case *AppPayload:
		t.Extra = rest
	case *MiniAppPayload:
		t.Extra = rest
	case *URLPayload:
		t.Extra = rest
	case *CrawlerPayload:
		t.Extra = rest
	case *SensitivePayload:
		t.Extra = rest
	case *DirScanPayload:
		t.Extra = rest
	case *VulnPayload:
		t.Extra = rest
	case *MonitorPayload:
		t.Extra = rest
	case *PortPayload:
		t.Extra = rest
	}
}

// skipModelled reports values the structs cannot carry through omitempty:
// explicit nulls and empty arrays.
func skipModelled(v any) bool {
	if v == nil {
		return true
	}
	if a, ok := v.([]any); ok && len(a) == 0 {
		return true
	}
	return false
}

func cloneRecord(m Record) Record {
	if m == nil {
		return nil
	}
	out := make(Record, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
