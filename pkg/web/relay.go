package web

import (
	"context"
	"io"
	"time"

	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/ws"
	"golang.org/x/net/websocket"
)

// relay pushes a monitor_data frame right away and then on every tick
// until the peer goes away.
func (s *Server) relay(conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(conn.Request().Context())
	defer cancel()

	// inbound frames are ignored; a read error means the peer left
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		cancel()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := websocket.JSON.Send(conn, s.frame(ctx)); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) frame(ctx context.Context) ws.MonitorData {
	return ws.MonitorData{
		Type:      ws.TypeMonitorData,
		Timestamp: float64(time.Now().Unix()),
		System:    s.monitor.Stats(),
		Nodes:     s.nodeCounts(ctx),
	}
}

// nodeCounts asks the backend with the caller's token. Failures leave
// the counts at zero.
func (s *Server) nodeCounts(ctx context.Context) ws.NodesData {
	var n ws.NodesData
	all, err := s.console.Nodes.List(ctx, console.NodeQuery{PageQuery: console.PageQuery{Page: 1, PageSize: 1}})
	if err != nil {
		return n
	}
	n.Total = all.Data.Total
	online, err := s.console.Nodes.List(ctx, console.NodeQuery{PageQuery: console.PageQuery{Page: 1, PageSize: 1}, Status: "online"})
	if err == nil {
		n.Online = online.Data.Total
	}
	n.Offline = n.Total - n.Online
	return n
}
