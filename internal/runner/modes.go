package runner

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/console"
	"github.com/zan8in/moongazing/pkg/export"
	"github.com/zan8in/moongazing/pkg/log"
	"github.com/zan8in/moongazing/pkg/result"
	"github.com/zan8in/moongazing/pkg/utils"
)

func (r *Runner) login(ctx context.Context) error {
	resp, err := r.console.Auth.Login(ctx, r.options.Username, r.options.Password)
	if err != nil {
		return errors.Wrap(err, "login failed")
	}
	name := result.String(resp.Data.User["username"])
	if name == "" {
		name = r.options.Username
	}
	gologger.Info().Msgf("Logged in as %s", log.LogColor.Bold(name))
	return nil
}

func (r *Runner) logout(ctx context.Context) error {
	if _, err := r.console.Auth.Logout(ctx); err != nil {
		gologger.Warning().Msgf("Console logout failed, local session cleared anyway: %v", err)
		return nil
	}
	gologger.Info().Msg("Logged out")
	return nil
}

func (r *Runner) whoami(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := r.console.Auth.Me(ctx)
	if err != nil {
		return err
	}
	u := resp.Data
	gologger.Print().Msgf("%s %s %s", log.LogColor.Bold(result.String(u["username"])), log.LogColor.Tag(result.String(u["role"])), result.String(u["email"]))
	if c, err := r.tokens.Claims(); err == nil && c.ExpiresAt != nil {
		gologger.Print().Msgf("Session expires at %s", c.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

// kind parses -type; empty means every kind.
func (r *Runner) kind() (result.Kind, error) {
	if r.options.ResultType == "" {
		return "", nil
	}
	k, ok := result.ParseKind(r.options.ResultType)
	if !ok {
		return "", errors.Errorf("unknown result type %q", r.options.ResultType)
	}
	return k, nil
}

func (r *Runner) firstTask() string {
	ids := r.options.TaskIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (r *Runner) results(ctx context.Context) error {
	kind, err := r.kind()
	if err != nil {
		return err
	}
	if r.options.Offline {
		return r.cachedResults(ctx, kind)
	}
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := r.console.Results.List(ctx, r.firstTask(), console.ResultQuery{
		Type:       kind,
		Page:       r.options.Page,
		PageSize:   r.options.PageSize,
		Search:     r.options.Search,
		StatusCode: r.options.StatusCode,
	})
	if err != nil {
		return err
	}
	page := resp.Data
	printRecords(kind, page.List)
	r.cacheBehind(kind, page.List)
	gologger.Info().Msgf("Page %d, showing %d of %d results", page.Page, len(page.List), page.Total)
	return nil
}

func (r *Runner) stats(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	resp, err := r.console.Results.Stats(ctx, r.firstTask())
	if err != nil {
		return err
	}
	for _, k := range result.Kinds() {
		gologger.Print().Msgf("%-10s %d", log.LogColor.Kind(string(k)), resp.Data[k])
	}
	gologger.Info().Msgf("Total results: %d", resp.Data.Total())
	return nil
}

func (r *Runner) tags(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	tags := utils.SplitComma(r.options.Tags)
	id := r.options.ResultID
	switch r.options.TagAction {
	case "", "set":
		if _, err := r.console.Results.UpdateTags(ctx, id, tags); err != nil {
			return err
		}
	case "add":
		for _, t := range tags {
			if _, err := r.console.Results.AddTag(ctx, id, t); err != nil {
				return errors.Wrapf(err, "add tag %s", t)
			}
		}
	case "remove":
		for _, t := range tags {
			if _, err := r.console.Results.RemoveTag(ctx, id, t); err != nil {
				return errors.Wrapf(err, "remove tag %s", t)
			}
		}
	}
	gologger.Info().Msgf("Tags of %s updated: %s", id, log.LogColor.Tag(strings.Join(tags, ",")))
	return nil
}

func (r *Runner) export(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	kind, err := r.kind()
	if err != nil {
		return err
	}
	format, err := export.ParseFormat(r.options.Format)
	if err != nil {
		return err
	}
	taskID := r.firstTask()
	recs, err := r.console.Results.Export(ctx, taskID, kind)
	if err != nil {
		return err
	}

	out := r.options.Output
	if out == "" {
		out = export.DefaultFilename(taskID, kind, format)
	}
	if err := export.WriteFile(out, recs, export.Options{Format: format, GB18030: r.options.GB18030}); err != nil {
		return err
	}
	gologger.Info().Msgf("Exported %d results to %s", len(recs), out)

	if r.options.Upload {
		up, err := export.NewUploader(ctx, r.config.Export.Minio)
		if err != nil {
			return err
		}
		u, err := up.Upload(ctx, out, "")
		if err != nil {
			return err
		}
		gologger.Info().Msgf("Uploaded to %s", u)
	}
	return nil
}

func (r *Runner) queue(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	o := r.console.Queue.Overview(ctx)
	if !o.Available {
		gologger.Warning().Msg(console.QueueUnavailable)
	}
	s := o.Stats
	gologger.Print().Msgf("pending %d  processing %d  completed %d  failed %d  deadletter %d", s.Pending, s.Processing, s.Completed, s.Failed, s.DeadLetter)
	gologger.Print().Msgf("workers %d/%d", o.Workers.Active, o.Workers.Total)
	for _, t := range o.Processing {
		gologger.Print().Msgf("%s %s %s", log.LogColor.Time(t.ID), log.LogColor.Kind(t.Type), t.Status)
	}
	return nil
}

func (r *Runner) tasks(ctx context.Context) error {
	if err := r.requireSession(); err != nil {
		return err
	}
	if r.options.Action != "" {
		action := console.TaskAction(strings.ToLower(r.options.Action))
		if !action.Valid() {
			return errors.Errorf("unknown task action %q", r.options.Action)
		}
		ids := r.options.TaskIDs()
		if len(ids) == 0 {
			return errors.Errorf("%s needs -task", action)
		}
		for _, id := range ids {
			if _, err := r.console.Tasks.Do(ctx, id, action); err != nil {
				return errors.Wrapf(err, "%s task %s", action, id)
			}
			gologger.Info().Msgf("Task %s: %s", id, action)
		}
		return nil
	}

	resp, err := r.console.Tasks.List(ctx, console.TaskQuery{
		PageQuery: console.PageQuery{Page: r.options.Page, PageSize: r.options.PageSize},
	})
	if err != nil {
		return err
	}
	for _, t := range resp.Data.List {
		gologger.Print().Msgf("%s %s %s %.0f%%", log.LogColor.Time(t.ID), log.LogColor.Title(t.Name), log.LogColor.Kind(t.Status), t.Progress)
	}
	gologger.Info().Msgf("Page %d, showing %d of %d tasks", resp.Data.Page, len(resp.Data.List), resp.Data.Total)
	return nil
}
