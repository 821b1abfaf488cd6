package runner

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/config"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/log"
	"github.com/zan8in/moongazing/pkg/webhook"
	"go.uber.org/zap"
)

type Runner struct {
	options *config.Options
	config  *config.Config

	tokens  *api.TokenStore
	client  *api.Client
	console *console.Console
	proxy   string
	logger  *zap.Logger

	// senders overrides the configured alert channels when set
	senders []webhook.Sender
}

// New wires the API client, the session token and the services for
// options. options must already be validated.
func New(options *config.Options) (*Runner, error) {
	if options.Config == nil {
		return nil, errors.New("configuration not loaded")
	}
	cfg := options.Config
	if options.BaseURL != "" {
		cfg.API.BaseURL = options.BaseURL
	}

	level := cfg.Log.Level
	if options.Debug {
		level = "debug"
	}
	logger := log.Init(log.Options{File: cfg.Log.File, Level: level})

	proxy := options.Proxy
	if proxy == "" {
		proxy = cfg.API.Proxy
	}
	if proxy != "" {
		p, err := config.LoadProxy(proxy, 3*time.Second)
		if err != nil {
			return nil, err
		}
		proxy = p
	}

	tokens := api.NewTokenStore(cfg.API.TokenFile)
	if err := tokens.Load(); err != nil {
		return nil, err
	}
	var src api.TokenSource = tokens
	if t := config.Token(); t != "" {
		src = api.StaticToken(t)
	}

	client := api.NewClient(cfg.API.BaseURL, api.ClientOptions{
		Timeout: cfg.RequestTimeout(),
		Proxy:   proxy,
		Tokens:  src,
		Logger:  logger,
		OnUnauthorized: func() {
			gologger.Warning().Msg("Session rejected by the console, run -m login again")
		},
	})

	return &Runner{
		options: options,
		config:  cfg,
		tokens:  tokens,
		client:  client,
		console: console.New(client, tokens),
		proxy:   proxy,
		logger:  logger,
	}, nil
}

// Run executes the selected mode.
func (r *Runner) Run(ctx context.Context) error {
	defer log.Sync()

	if r.options.Update {
		if err := config.UpdateEngine(); err != nil {
			return err
		}
		if r.options.Mode == "" {
			return nil
		}
	}

	if !r.options.Silent {
		config.ShowConsole(r.config, r.token() != "")
	}

	switch r.options.Mode {
	case config.ModeLogin:
		return r.login(ctx)
	case config.ModeLogout:
		return r.logout(ctx)
	case config.ModeWhoami:
		return r.whoami(ctx)
	case config.ModeResults:
		return r.results(ctx)
	case config.ModeStats:
		return r.stats(ctx)
	case config.ModeTags:
		return r.tags(ctx)
	case config.ModeExport:
		return r.export(ctx)
	case config.ModeSync:
		_, err := r.sync(ctx)
		return err
	case config.ModeQueue:
		return r.queue(ctx)
	case config.ModeTasks:
		return r.tasks(ctx)
	case config.ModeWatch:
		return r.watch(ctx)
	case config.ModeServe:
		return r.serve(ctx)
	}
	return errors.Errorf("unknown mode %q", r.options.Mode)
}

func (r *Runner) token() string {
	if t := config.Token(); t != "" {
		return t
	}
	return r.tokens.Token()
}

// requireSession fails fast when no token is present or the stored one
// has already expired.
func (r *Runner) requireSession() error {
	if r.token() == "" {
		return errors.New("not logged in, run -m login first")
	}
	if config.Token() == "" && r.tokens.Expired(time.Now()) {
		return errors.New("session expired, run -m login again")
	}
	return nil
}
