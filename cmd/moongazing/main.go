package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zan8in/goflags"
	"github.com/zan8in/gologger"
	"github.com/zan8in/gologger/levels"
	"github.com/zan8in/moongazing/internal/runner"
	"github.com/zan8in/moongazing/pkg/config"
)

var options = &config.Options{}

func main() {
	readConfig()

	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if !options.Silent {
		config.ShowBanner()
	}

	if err := options.Validate(); err != nil {
		gologger.Fatal().Msgf("%s\n%s", err, runner.ShowUsage())
	}

	cfg, err := config.New(options.ConfigFile)
	if err != nil {
		gologger.Fatal().Msgf("Could not read config: %s", err)
	}
	options.Config = cfg

	r, err := runner.New(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.Run(ctx); err != nil {
		gologger.Fatal().Msgf("%s", err)
	}
}

func readConfig() {
	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`moongazing is a command line client and local gateway for the moongazing scan console.`)

	flagSet.CreateGroup("mode", "Mode",
		flagSet.StringVarP(&options.Mode, "mode", "m", "", "mode to run. Possible values: "+strings.Join(config.Modes, ", ")),
		flagSet.StringVar(&options.ConfigFile, "config", "", "path to moongazing-config.yaml"),
	)

	flagSet.CreateGroup("console", "Console",
		flagSet.StringVarP(&options.BaseURL, "api", "a", "", "console API base URL, eg: http://127.0.0.1:8080/api"),
		flagSet.StringVar(&options.Proxy, "proxy", "", "http/socks5 proxy, a comma separated list or a file of proxies"),
		flagSet.StringVarP(&options.Username, "username", "u", "", "login username"),
		flagSet.StringVarP(&options.Password, "password", "p", "", "login password"),
	)

	flagSet.CreateGroup("results", "Results",
		flagSet.StringVar(&options.TaskID, "task", "", "task id, or a comma separated list for sync and tasks"),
		flagSet.StringVar(&options.ResultType, "type", "", "result type, eg: subdomain, port, vuln"),
		flagSet.IntVar(&options.Page, "page", 0, "page number"),
		flagSet.IntVarP(&options.PageSize, "page-size", "ps", 0, "page size"),
		flagSet.StringVarP(&options.Search, "search", "s", "", "search keyword"),
		flagSet.IntVarP(&options.StatusCode, "status-code", "sc", 0, "filter by http status code"),
		flagSet.StringVar(&options.ResultID, "result", "", "result id for tags, or a single cached result with -offline"),
		flagSet.BoolVar(&options.Offline, "offline", false, "list results from the local cache"),
		flagSet.StringVar(&options.Tags, "tags", "", "comma separated tags"),
		flagSet.StringVar(&options.TagAction, "tag-action", "set", "tag action. Possible values: set, add, remove"),
		flagSet.StringVar(&options.Action, "action", "", "task action. Possible values: start, pause, resume, cancel, retry"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "export file, eg: -o result.csv"),
		flagSet.StringVarP(&options.Format, "format", "f", "json", "export format. Possible values: json, csv"),
		flagSet.BoolVar(&options.GB18030, "gb18030", false, "encode csv exports as GB18030"),
		flagSet.BoolVar(&options.Upload, "upload", false, "upload the export to the configured minio bucket"),
	)

	flagSet.CreateGroup("sync", "Sync",
		flagSet.StringVarP(&options.Severity, "severity", "S", "", "alert severity range, eg: high,critical"),
		flagSet.BoolVarP(&options.NoAlert, "no-alert", "na", false, "do not push alerts"),
		flagSet.BoolVar(&options.Fresh, "fresh", false, "drop cached results of the tasks before sync"),
		flagSet.IntVarP(&options.Workers, "workers", "w", config.DefaultWorkers, "concurrent tasks and page fetches"),
	)

	flagSet.CreateGroup("gateway", "Gateway",
		flagSet.StringVar(&options.Listen, "listen", "", "gateway listen address, eg: 127.0.0.1:16868"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVar(&options.Silent, "silent", false, "only results"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output"),
		flagSet.BoolVar(&options.Update, "update", false, "update moongazing to the latest released version"),
	)

	_ = flagSet.Parse()
}
