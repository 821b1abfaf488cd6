package console

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/api"
)

// QueueUnavailable is the message of every queue fallback answer.
const QueueUnavailable = "Queue service not available"

type QueueTask struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	Status      string         `json:"status"`
	Priority    int            `json:"priority"`
	Retries     int            `json:"retries"`
	MaxRetries  int            `json:"maxRetries"`
	Error       string         `json:"error,omitempty"`
	Result      map[string]any `json:"result,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	StartedAt   string         `json:"startedAt,omitempty"`
	CompletedAt string         `json:"completedAt,omitempty"`
}

type QueueStats struct {
	Pending            int64   `json:"pending"`
	Processing         int64   `json:"processing"`
	Completed          int64   `json:"completed"`
	Failed             int64   `json:"failed"`
	DeadLetter         int64   `json:"deadletter"`
	TotalProcessed     int64   `json:"totalProcessed"`
	AverageProcessTime float64 `json:"averageProcessTime"`
	WorkersActive      int64   `json:"workersActive"`
	WorkersTotal       int64   `json:"workersTotal"`
}

type QueueTaskType struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DefaultPriority int    `json:"defaultPriority"`
	MaxRetries      int    `json:"maxRetries"`
}

type QueueTaskList struct {
	List  []QueueTask `json:"list"`
	Total int64       `json:"total"`
}

type Worker struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	CurrentTask    string `json:"currentTask,omitempty"`
	ProcessedCount int64  `json:"processedCount"`
	StartedAt      string `json:"startedAt"`
}

type WorkerStatus struct {
	Active  int64    `json:"active"`
	Total   int64    `json:"total"`
	Workers []Worker `json:"workers"`
}

type QueueService struct {
	t Transport
}

// fallback runs a queue read. Any failure, transport or backend, is
// logged and replaced by zero, so callers never see the queue missing.
func fallback[T any](ctx context.Context, t Transport, path string, query url.Values, zero T) *api.Response[T] {
	resp, err := api.Invoke[T](ctx, t, http.MethodGet, path, query, nil)
	if err != nil {
		gologger.Warning().Msgf("Queue API not available (Redis not configured): %v", err)
		return &api.Response[T]{Code: 0, Message: QueueUnavailable, Data: zero}
	}
	return resp
}

func pageParams(page, pageSize int, typ string) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	if typ != "" {
		q.Set("type", typ)
	}
	return q
}

func (s *QueueService) Stats(ctx context.Context) *api.Response[QueueStats] {
	return fallback(ctx, s.t, "/queue/stats", nil, QueueStats{})
}

func (s *QueueService) Types(ctx context.Context) *api.Response[[]QueueTaskType] {
	resp := fallback(ctx, s.t, "/queue/types", nil, []QueueTaskType{})
	if resp.Data == nil {
		resp.Data = []QueueTaskType{}
	}
	return resp
}

func (s *QueueService) Pending(ctx context.Context, page, pageSize int, typ string) *api.Response[QueueTaskList] {
	resp := fallback(ctx, s.t, "/queue/tasks/pending", pageParams(page, pageSize, typ), QueueTaskList{List: []QueueTask{}})
	if resp.Data.List == nil {
		resp.Data.List = []QueueTask{}
	}
	return resp
}

func (s *QueueService) Processing(ctx context.Context) *api.Response[[]QueueTask] {
	resp := fallback(ctx, s.t, "/queue/tasks/processing", nil, []QueueTask{})
	if resp.Data == nil {
		resp.Data = []QueueTask{}
	}
	return resp
}

func (s *QueueService) DeadLetter(ctx context.Context, page, pageSize int) *api.Response[QueueTaskList] {
	resp := fallback(ctx, s.t, "/queue/tasks/deadletter", pageParams(page, pageSize, ""), QueueTaskList{List: []QueueTask{}})
	if resp.Data.List == nil {
		resp.Data.List = []QueueTask{}
	}
	return resp
}

func (s *QueueService) Workers(ctx context.Context) *api.Response[WorkerStatus] {
	resp := fallback(ctx, s.t, "/queue/workers", nil, WorkerStatus{Workers: []Worker{}})
	if resp.Data.Workers == nil {
		resp.Data.Workers = []Worker{}
	}
	return resp
}

// Enqueue adds a task. Priority 0 lets the backend pick the type default.
func (s *QueueService) Enqueue(ctx context.Context, typ string, payload map[string]any, priority int) (*api.Response[QueueTask], error) {
	body := map[string]any{"type": typ, "payload": payload}
	if priority != 0 {
		body["priority"] = priority
	}
	return api.Invoke[QueueTask](ctx, s.t, http.MethodPost, "/queue/tasks", nil, body)
}

func (s *QueueService) Result(ctx context.Context, id string) (*api.Response[QueueTask], error) {
	return api.Invoke[QueueTask](ctx, s.t, http.MethodGet, pathf("/queue/tasks/%s/result", id), nil, nil)
}

func (s *QueueService) RetryDeadLetter(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, pathf("/queue/tasks/deadletter/%s/retry", id), nil, nil)
}

func (s *QueueService) ClearDeadLetter(ctx context.Context) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, "/queue/tasks/deadletter", nil, nil)
}

func (s *QueueService) Cancel(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/queue/tasks/%s", id), nil, nil)
}

// QueueOverview collects the read-only queue views in one struct.
type QueueOverview struct {
	Stats      QueueStats      `json:"stats"`
	Types      []QueueTaskType `json:"types"`
	Processing []QueueTask     `json:"processing"`
	Workers    WorkerStatus    `json:"workers"`
	Available  bool            `json:"available"`
}

// Overview never fails; Available is false when any view fell back.
func (s *QueueService) Overview(ctx context.Context) QueueOverview {
	stats := s.Stats(ctx)
	types := s.Types(ctx)
	proc := s.Processing(ctx)
	workers := s.Workers(ctx)
	avail := true
	for _, m := range []string{stats.Message, types.Message, proc.Message, workers.Message} {
		if m == QueueUnavailable {
			avail = false
		}
	}
	return QueueOverview{Stats: stats.Data, Types: types.Data, Processing: proc.Data, Workers: workers.Data, Available: avail}
}
