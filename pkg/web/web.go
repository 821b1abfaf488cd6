// Package web is a small local gateway in front of the scan platform. It
// serves the normalized console shapes under /api, forwarding the caller's
// bearer token, and pushes host telemetry over /ws.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/log"
	"go.uber.org/zap"
)

const DefaultPushInterval = 3 * time.Second

type Server struct {
	console  *console.Console
	monitor  *SystemMonitor
	interval time.Duration
	started  time.Time
	logger   *zap.Logger
}

// NewServer builds a gateway over c. A zero interval uses
// DefaultPushInterval for both sampling and pushing.
func NewServer(c *console.Console, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultPushInterval
	}
	return &Server{
		console:  c,
		monitor:  NewSystemMonitor(interval),
		interval: interval,
		started:  time.Now().UTC(),
		logger:   log.Log(),
	}
}

// StartServer listens on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) StartServer(ctx context.Context, addr string) error {
	go s.monitor.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		gologger.Info().Msgf("Gateway listening on http://%s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gologger.Info().Msg("Gateway shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
