package runner

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/log"
	"github.com/zan8in/moongazing/pkg/web"
	"github.com/zan8in/moongazing/pkg/ws"
)

// watch streams the console's WebSocket frames until ctx is cancelled.
func (r *Runner) watch(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	c, err := ws.New(r.client.BaseURL(), ws.Options{
		Token: r.token(),
		OnOpen: func() {
			gologger.Info().Msg("WebSocket connected")
		},
		OnClose: func() {
			gologger.Warning().Msg("WebSocket closed, reconnecting")
		},
	})
	if err != nil {
		return err
	}
	c.OnMonitor(func(m ws.MonitorData) {
		gologger.Print().Msg(monitorLine(m))
	})
	c.On("", func(m ws.Message) {
		if m.Type == ws.TypeMonitorData {
			return
		}
		gologger.Print().Msgf("%s %s %s", log.LogColor.Time(ws.Time(m.Timestamp).Format("15:04:05")), log.LogColor.Kind(m.Type), string(m.Data))
	})

	err = c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func monitorLine(m ws.MonitorData) string {
	s := m.System
	return fmt.Sprintf("%s cpu %.1f%%  mem %.1f%%  disk %.1f%%  nodes %s/%d",
		log.LogColor.Time(ws.Time(m.Timestamp).Format("15:04:05")),
		s.CPUUsage, s.MemoryUsage, s.DiskUsage,
		log.LogColor.Green(m.Nodes.Online), m.Nodes.Total)
}

// serve runs the local gateway. It forwards each caller's own token, so
// the CLI session is not shared with gateway clients.
func (r *Runner) serve(ctx context.Context) error {
	listen := r.options.Listen
	if listen == "" {
		listen = r.config.Gateway.Listen
	}
	client := api.NewClient(r.config.API.BaseURL, api.ClientOptions{
		Timeout: r.config.RequestTimeout(),
		Proxy:   r.proxy,
		Logger:  r.logger,
	})
	return web.NewServer(console.New(client, nil), 0).StartServer(ctx, listen)
}
