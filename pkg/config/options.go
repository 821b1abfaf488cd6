package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/utils"
)

// Modes understood by -mode.
const (
	ModeLogin   = "login"
	ModeLogout  = "logout"
	ModeWhoami  = "whoami"
	ModeResults = "results"
	ModeStats   = "stats"
	ModeTags    = "tags"
	ModeExport  = "export"
	ModeSync    = "sync"
	ModeQueue   = "queue"
	ModeTasks   = "tasks"
	ModeWatch   = "watch"
	ModeServe   = "serve"
)

var Modes = []string{
	ModeLogin, ModeLogout, ModeWhoami, ModeResults, ModeStats, ModeTags,
	ModeExport, ModeSync, ModeQueue, ModeTasks, ModeWatch, ModeServe,
}

type Options struct {
	// moongazing-config.yaml configuration
	Config *Config

	// ConfigFile overrides the default configuration path
	ConfigFile string

	Mode string

	// BaseURL and Proxy override the configuration file
	BaseURL string
	Proxy   string

	Username string
	Password string

	// TaskID is one task, or a comma separated list for sync
	TaskID     string
	ResultType string
	Page       int
	PageSize   int
	Search     string
	StatusCode int

	// Offline reads results from the local cache instead of the console
	Offline bool
	// Fresh drops a task's cached rows before sync, so every result
	// counts as new
	Fresh bool

	ResultID  string
	Tags      string
	TagAction string

	// Action is a task lifecycle action for the tasks mode
	Action string

	Output string
	Format string
	// GB18030 encodes CSV exports for spreadsheet tools on Chinese locales
	GB18030 bool
	Upload  bool

	// Severity limits alerts, eg: high,critical
	Severity string
	NoAlert  bool

	Workers int
	Listen  string

	Silent bool
	Debug  bool
	Update bool
}

// Validate checks the flags the chosen mode needs.
func (o *Options) Validate() error {
	o.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
	if o.Update && o.Mode == "" {
		return nil
	}
	if !utils.StringSliceContains(Modes, o.Mode) {
		return errors.Errorf("unknown mode %q, possible values: %s", o.Mode, strings.Join(Modes, ", "))
	}
	switch o.Mode {
	case ModeLogin:
		if utils.IsBlank(o.Username) || o.Password == "" {
			return errors.New("login needs -username and -password")
		}
	case ModeResults, ModeStats, ModeExport, ModeSync:
		if utils.IsBlank(o.TaskID) {
			return errors.Errorf("%s needs -task", o.Mode)
		}
	case ModeTags:
		if utils.IsBlank(o.ResultID) {
			return errors.New("tags needs -result")
		}
		switch o.TagAction {
		case "", "set", "add", "remove":
		default:
			return errors.Errorf("unknown tag action %q, possible values: set, add, remove", o.TagAction)
		}
	}
	if o.Mode == ModeExport {
		switch strings.ToLower(o.Format) {
		case "", "json", "csv":
		default:
			return errors.Errorf("unknown export format %q", o.Format)
		}
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return nil
}

// TaskIDs splits TaskID on commas.
func (o *Options) TaskIDs() []string {
	return utils.SplitComma(o.TaskID)
}
