package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/result"
)

// Query is a list query in the caller's vocabulary (page, pageSize,
// search, camelCase filters). Endpoint translates it for the backend.
type Query map[string]any

// DefaultVocabulary maps query keys to the names most backend list
// endpoints expect. Keys not listed are sent unchanged.
var DefaultVocabulary = map[string]string{
	"pageSize":    "page_size",
	"search":      "keyword",
	"groupId":     "group_id",
	"assetId":     "asset_id",
	"taskId":      "task_id",
	"statusCode":  "status_code",
	"nodeId":      "node_id",
	"pageId":      "page_id",
	"channelId":   "channel_id",
	"workspaceId": "workspace_id",
}

// Endpoint describes one backend collection.
type Endpoint struct {
	Path            string
	DefaultPageSize int
	// Rename overrides DefaultVocabulary for this endpoint.
	Rename map[string]string
}

// Page is one page of records in the frontend envelope shape.
type Page[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

func (e Endpoint) pageSize() int {
	if e.DefaultPageSize > 0 {
		return e.DefaultPageSize
	}
	return 10
}

func (e Endpoint) backendKey(k string) string {
	if v, ok := e.Rename[k]; ok {
		return v
	}
	if v, ok := DefaultVocabulary[k]; ok {
		return v
	}
	return k
}

// Requested returns the page and page size that will be sent for q.
func (e Endpoint) Requested(q Query) (page, size int) {
	page, size = 1, e.pageSize()
	if n, ok := positiveInt(q["page"]); ok {
		page = n
	}
	if n, ok := positiveInt(q["pageSize"]); ok {
		size = n
	}
	return page, size
}

// Values translates q into backend query parameters. Nil values, empty
// strings and empty slices are dropped; string slices are comma-joined.
func (e Endpoint) Values(q Query) url.Values {
	v := url.Values{}
	page, size := e.Requested(q)
	for k, raw := range q {
		if k == "page" || k == "pageSize" {
			continue
		}
		s, ok := paramString(raw)
		if !ok {
			continue
		}
		v.Set(e.backendKey(k), s)
	}
	v.Set(e.backendKey("page"), strconv.Itoa(page))
	v.Set(e.backendKey("pageSize"), strconv.Itoa(size))
	return v
}

// Fetch runs one list query and reshapes the backend envelope. A nil
// transform keeps records as decoded. Errors are returned unmodified.
func Fetch[T any](ctx context.Context, c api.Caller, e Endpoint, q Query, transform func(result.Record) T) (*api.Response[Page[T]], error) {
	_, size := e.Requested(q)
	env, err := c.Call(ctx, http.MethodGet, e.Path, e.Values(q), nil)
	if err != nil {
		return nil, err
	}
	return Reshape(env, size, transform)
}

// FetchResults is Fetch with the scan result field mapper.
func FetchResults(ctx context.Context, c api.Caller, e Endpoint, q Query) (*api.Response[Page[result.Record]], error) {
	return Fetch(ctx, c, e, q, result.Normalize)
}

// nested is the object form of data used by some endpoints.
type nested struct {
	List     []json.RawMessage `json:"list"`
	Items    []json.RawMessage `json:"items"`
	Total    *int64            `json:"total"`
	Page     *int              `json:"page"`
	PageSize *int              `json:"pageSize"`
	Size     *int              `json:"size"`
}

// Reshape converts a backend envelope into the frontend page envelope.
// total defaults to 0, page to 1 and pageSize to requestedSize.
func Reshape[T any](env *api.Envelope, requestedSize int, transform func(result.Record) T) (*api.Response[Page[T]], error) {
	out := &api.Response[Page[T]]{
		Code:    env.Code,
		Message: env.Message,
		Data:    Page[T]{List: []T{}, Page: 1, PageSize: requestedSize},
	}

	var items []json.RawMessage
	total, page, size := env.Total, env.Page, env.Size

	if env.HasData() {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			var n nested
			if err2 := json.Unmarshal(env.Data, &n); err2 != nil {
				return nil, errors.Wrap(err, "decode page data")
			}
			items = n.List
			if items == nil {
				items = n.Items
			}
			total = firstInt64(n.Total, total)
			page = firstInt(n.Page, page)
			size = firstInt(n.PageSize, firstInt(n.Size, size))
		}
	}

	if total != nil {
		out.Data.Total = *total
	}
	if page != nil {
		out.Data.Page = *page
	}
	if size != nil {
		out.Data.PageSize = *size
	}

	for i, raw := range items {
		item, err := decodeItem[T](raw, transform)
		if err != nil {
			return nil, errors.Wrapf(err, "decode item %d", i)
		}
		out.Data.List = append(out.Data.List, item)
	}
	return out, nil
}

func decodeItem[T any](raw json.RawMessage, transform func(result.Record) T) (T, error) {
	var zero T
	if transform == nil {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return zero, err
		}
		return v, nil
	}
	var rec result.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		// Non-object elements map to envelope-only records.
		rec = nil
	}
	return transform(rec), nil
}

func firstInt(a, b *int) *int {
	if a != nil {
		return a
	}
	return b
}

func firstInt64(a, b *int64) *int64 {
	if a != nil {
		return a
	}
	return b
}

func positiveInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, t > 0
	case int64:
		return int(t), t > 0
	case float64:
		return int(t), t > 0
	case string:
		n, err := strconv.Atoi(t)
		return n, err == nil && n > 0
	}
	return 0, false
}

func paramString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil || *t == "" {
			return "", false
		}
		return *t, true
	case *bool:
		if t == nil {
			return "", false
		}
		return strconv.FormatBool(*t), true
	case []string:
		if len(t) == 0 {
			return "", false
		}
		return strings.Join(t, ","), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		s := t.String()
		return s, s != ""
	default:
		return fmt.Sprint(t), true
	}
}
