package runner

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/db"
	"github.com/zan8in/moongazing/pkg/db/sqlite"
	"github.com/zan8in/moongazing/pkg/log"
	"github.com/zan8in/moongazing/pkg/result"
	"github.com/zan8in/moongazing/pkg/webhook"
	"github.com/zan8in/moongazing/pkg/webhook/dingtalk"
	"github.com/zan8in/moongazing/pkg/webhook/wecom"
)

// SyncReport counts what one sync run did. Fields are updated atomically.
type SyncReport struct {
	Tasks     int64
	Failed    int64
	Fetched   int64
	New       int64
	Changed   int64
	Unchanged int64
	Skipped   int64
	Alerts    int64
}

// sync pulls every result of the selected tasks into the local cache and
// alerts on vuln and takeover results that are new or changed.
func (r *Runner) sync(ctx context.Context) (*SyncReport, error) {
	if err := r.requireSession(); err != nil {
		return nil, err
	}
	kinds := result.Kinds()
	k, err := r.kind()
	if err != nil {
		return nil, err
	}
	if k != "" {
		kinds = []result.Kind{k}
	}

	store, err := r.openCache()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ids := r.options.TaskIDs()
	if r.options.Fresh {
		for _, id := range ids {
			if err := r.forget(ctx, store, id); err != nil {
				return nil, err
			}
		}
	}

	senders := r.alertSenders()
	report := &SyncReport{}

	var (
		mu   sync.Mutex
		errs []error
	)
	swg := sizedwaitgroup.New(r.options.Workers)
	for _, id := range ids {
		swg.Add()
		go func(id string) {
			defer swg.Done()
			atomic.AddInt64(&report.Tasks, 1)
			if err := r.syncTask(ctx, store, senders, id, kinds, report); err != nil {
				atomic.AddInt64(&report.Failed, 1)
				gologger.Error().Msgf("Sync task %s failed: %v", id, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(id)
	}
	swg.Wait()

	gologger.Info().Msgf("Synced %d tasks: %d fetched, %s new, %d changed, %d unchanged, %d alerts",
		report.Tasks-report.Failed, report.Fetched, log.LogColor.Green(report.New), report.Changed, report.Unchanged, report.Alerts)

	if len(errs) > 0 && len(errs) == len(ids) {
		return report, errs[0]
	}
	return report, nil
}

func (r *Runner) syncTask(ctx context.Context, store *sqlite.Store, senders []webhook.Sender, taskID string, kinds []result.Kind, report *SyncReport) error {
	for _, kind := range kinds {
		recs, _, err := r.console.Results.All(ctx, taskID, console.ResultQuery{
			Type:       kind,
			Search:     r.options.Search,
			StatusCode: r.options.StatusCode,
		}, r.options.Workers)
		if err != nil {
			return errors.Wrapf(err, "fetch %s results", kind)
		}
		atomic.AddInt64(&report.Fetched, int64(len(recs)))

		for _, rec := range recs {
			row, err := db.FromRecord(kind, rec)
			if err != nil {
				atomic.AddInt64(&report.Skipped, 1)
				continue
			}
			if row.TaskID == "" {
				row.TaskID = taskID
			}
			state, err := store.Upsert(ctx, row)
			if err != nil {
				return errors.Wrapf(err, "cache result %s", row.ID)
			}
			switch state {
			case db.Unchanged:
				atomic.AddInt64(&report.Unchanged, 1)
				continue
			case db.Inserted:
				atomic.AddInt64(&report.New, 1)
			case db.Changed:
				atomic.AddInt64(&report.Changed, 1)
			}
			if !r.options.Silent {
				gologger.Print().Msgf("%s %s", log.LogColor.Green("["+state.String()+"]"), recordLine(kind, rec))
			}
			r.alert(senders, kind, rec, report)
		}
	}
	return nil
}

func (r *Runner) alert(senders []webhook.Sender, kind result.Kind, rec result.Record, report *SyncReport) {
	if len(senders) == 0 {
		return
	}
	a, ok := webhook.FromRecord(kind, rec)
	if !ok {
		return
	}
	atomic.AddInt64(&report.Alerts, 1)
	for _, s := range senders {
		if err := s.Send(a); err != nil {
			gologger.Warning().Msgf("Alert %s not delivered: %v", a.Name, err)
		}
	}
}

// alertSenders builds the configured channels. -S overrides each
// channel's severity range.
func (r *Runner) alertSenders() []webhook.Sender {
	if r.options.NoAlert {
		return nil
	}
	if r.senders != nil {
		return r.senders
	}
	rang := func(def string) string {
		if r.options.Severity != "" {
			return r.options.Severity
		}
		return def
	}

	var out []webhook.Sender
	wh := r.config.Webhook
	if !webhook.IsTokensEmpty(wh.Dingtalk.Tokens) {
		d, err := dingtalk.New(wh.Dingtalk.Tokens, wh.Dingtalk.AtMobiles, rang(wh.Dingtalk.Range), wh.Dingtalk.AtAll)
		if err != nil {
			gologger.Warning().Msgf("Dingtalk alerts disabled: %v", err)
		} else {
			out = append(out, d)
		}
	}
	if !webhook.IsTokensEmpty(wh.Wecom.Tokens) {
		w, err := wecom.New(wh.Wecom.Tokens, wh.Wecom.AtMobiles, rang(wh.Wecom.Range), wh.Wecom.AtAll, wh.Wecom.Markdown)
		if err != nil {
			gologger.Warning().Msgf("Wecom alerts disabled: %v", err)
		} else {
			out = append(out, w)
		}
	}
	return out
}
