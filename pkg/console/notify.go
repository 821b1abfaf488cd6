package console

import (
	"context"
	"net/http"

	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/pagination"
	"github.com/zan8in/moongazing/pkg/result"
)

type NotifyChannel struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Enabled   bool           `json:"enabled"`
	Config    map[string]any `json:"config"`
	CreatedAt string         `json:"createdAt"`
	UpdatedAt string         `json:"updatedAt"`
}

type NotifyMessage struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Level       string `json:"level"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"createdAt"`
	SentAt      string `json:"sentAt,omitempty"`
}

type NotifyType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NotifyHistoryQuery struct {
	PageQuery
	ChannelID string
	Status    string
}

type NotifyService struct {
	t Transport
}

func (s *NotifyService) Channels(ctx context.Context) (*api.Response[pagination.Page[NotifyChannel]], error) {
	env, err := s.t.Call(ctx, http.MethodGet, "/notify/channels", nil, nil)
	if err != nil {
		return nil, err
	}
	return pagination.Reshape[NotifyChannel](env, 0, nil)
}

func (s *NotifyService) Channel(ctx context.Context, id string) (*api.Response[NotifyChannel], error) {
	return api.Invoke[NotifyChannel](ctx, s.t, http.MethodGet, pathf("/notify/channels/%s", id), nil, nil)
}

func (s *NotifyService) CreateChannel(ctx context.Context, ch NotifyChannel) (*api.Response[NotifyChannel], error) {
	return api.Invoke[NotifyChannel](ctx, s.t, http.MethodPost, "/notify/channels", nil, ch)
}

func (s *NotifyService) UpdateChannel(ctx context.Context, id string, fields map[string]any) (*api.Response[NotifyChannel], error) {
	return api.Invoke[NotifyChannel](ctx, s.t, http.MethodPut, pathf("/notify/channels/%s", id), nil, fields)
}

func (s *NotifyService) DeleteChannel(ctx context.Context, id string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodDelete, pathf("/notify/channels/%s", id), nil, nil)
}

func (s *NotifyService) TestChannel(ctx context.Context, id string) (*api.Response[result.Record], error) {
	return api.Invoke[result.Record](ctx, s.t, http.MethodPost, pathf("/notify/channels/%s/test", id), nil, nil)
}

func (s *NotifyService) ToggleChannel(ctx context.Context, id string, enabled bool) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPut, pathf("/notify/channels/%s/toggle", id), nil, map[string]any{"enabled": enabled})
}

func (s *NotifyService) History(ctx context.Context, q NotifyHistoryQuery) (*api.Response[pagination.Page[NotifyMessage]], error) {
	e := pagination.Endpoint{Path: "/notify/history", DefaultPageSize: 10, Rename: camel}
	qq := q.query()
	qq["channelId"] = q.ChannelID
	qq["status"] = q.Status
	return pagination.Fetch[NotifyMessage](ctx, s.t, e, qq, nil)
}

func (s *NotifyService) Types(ctx context.Context) (*api.Response[[]NotifyType], error) {
	return api.Invoke[[]NotifyType](ctx, s.t, http.MethodGet, "/notify/types", nil, nil)
}

// Send pushes a message through one channel.
func (s *NotifyService) Send(ctx context.Context, channelID, title, content, level string) (*Ack, error) {
	return ack(ctx, s.t, http.MethodPost, "/notify/send", nil, map[string]any{
		"channelId": channelID,
		"title":     title,
		"content":   content,
		"level":     level,
	})
}
