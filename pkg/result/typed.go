package result

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ScanResult is the backend wire shape of one result.
type ScanResult struct {
	ID        string   `json:"id"`
	TaskID    string   `json:"task_id"`
	Type      Kind     `json:"type"`
	Data      Record   `json:"data"`
	Tags      []string `json:"tags"`
	Project   string   `json:"project"`
	Source    string   `json:"source"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// Payload decodes the result's data using its kind.
func (r ScanResult) Payload() Payload {
	return DecodePayload(r.Type, r.Data)
}

// Envelope reads the common fields back out of a normalized record.
func Envelope(n Record) ScanResult {
	data, _ := AsRecord(n["data"])
	return ScanResult{
		ID:        stringify(n["id"]),
		TaskID:    String(n["taskId"]),
		Type:      Kind(String(n["type"])),
		Data:      data,
		Tags:      StringSlice(n["tags"]),
		Project:   String(n["project"]),
		Source:    String(n["source"]),
		CreatedAt: String(n["createdAt"]),
		UpdatedAt: String(n["updatedAt"]),
	}
}

type DomainResult struct {
	ID        string   `json:"id"`
	Domain    string   `json:"domain"`
	ICP       string   `json:"icp"`
	Company   string   `json:"company"`
	ICPType   string   `json:"icpType"`
	Province  string   `json:"province"`
	Registrar string   `json:"registrar"`
	Tags      []string `json:"tags"`
	Project   string   `json:"project"`
	CreatedAt string   `json:"createdAt"`
}

type SubdomainResult struct {
	ID           string   `json:"id"`
	Subdomain    string   `json:"subdomain"`
	Domain       string   `json:"domain"`
	URL          string   `json:"url,omitempty"`
	IPs          []string `json:"ips"`
	CDN          bool     `json:"cdn"`
	CDNName      string   `json:"cdnName,omitempty"`
	CDNProvider  string   `json:"cdnProvider,omitempty"`
	Title        string   `json:"title"`
	StatusCode   int      `json:"statusCode"`
	WebServer    string   `json:"webServer"`
	Technologies []string `json:"technologies,omitempty"`
	Fingerprint  []string `json:"fingerprint"`
	IsAlive      bool     `json:"isAlive"`
	Tags         []string `json:"tags"`
	Project      string   `json:"project"`
	CreatedAt    string   `json:"createdAt"`
}

type TakeoverResult struct {
	ID          string   `json:"id"`
	Subdomain   string   `json:"subdomain"`
	CNAME       string   `json:"cname"`
	Provider    string   `json:"provider"`
	Vulnerable  bool     `json:"vulnerable"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Evidence    string   `json:"evidence"`
	Tags        []string `json:"tags"`
	Project     string   `json:"project"`
	CreatedAt   string   `json:"createdAt"`
}

type URLResult struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Method      string   `json:"method"`
	StatusCode  int      `json:"statusCode"`
	ContentType string   `json:"contentType"`
	Title       string   `json:"title"`
	Length      int64    `json:"length"`
	Fingerprint []string `json:"fingerprint"`
	IsAPI       bool     `json:"isApi"`
	Tags        []string `json:"tags"`
	Project     string   `json:"project"`
	CreatedAt   string   `json:"createdAt"`
}

type SensitiveResult struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Type      string   `json:"type"`
	Value     string   `json:"value"`
	Context   string   `json:"context"`
	Location  string   `json:"location"`
	Severity  string   `json:"severity"`
	Tags      []string `json:"tags"`
	Project   string   `json:"project"`
	CreatedAt string   `json:"createdAt"`
}

type DirScanResult struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Path        string   `json:"path"`
	StatusCode  int      `json:"statusCode"`
	ContentType string   `json:"contentType"`
	Length      int64    `json:"length"`
	Redirect    string   `json:"redirect,omitempty"`
	IsBackup    bool     `json:"isBackup"`
	IsConfig    bool     `json:"isConfig"`
	Tags        []string `json:"tags"`
	Project     string   `json:"project"`
	CreatedAt   string   `json:"createdAt"`
}

// As narrows a normalized record to a kind-specific view. Keys whose type
// does not fit the view are left at their zero value.
func As[T any](n Record) (T, error) {
	var out T
	b, err := json.Marshal(n)
	if err != nil {
		return out, errors.Wrap(err, "marshal normalized result")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		// encoding/json keeps decoding past a type mismatch.
		var te *json.UnmarshalTypeError
		if !errors.As(err, &te) {
			return out, errors.Wrap(err, "narrow normalized result")
		}
	}
	return out, nil
}

// Narrow maps a whole normalized page to a kind-specific view.
func Narrow[T any](list []Record) []T {
	out := make([]T, 0, len(list))
	for _, n := range list {
		v, _ := As[T](n)
		out = append(out, v)
	}
	return out
}
