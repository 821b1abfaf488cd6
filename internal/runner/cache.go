package runner

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/db"
	"github.com/zan8in/moongazing/pkg/db/sqlite"
	"github.com/zan8in/moongazing/pkg/result"
)

func (r *Runner) openCache() (*sqlite.Store, error) {
	return sqlite.Open(r.config.Cache.Driver, r.config.Cache.DSN)
}

// cacheBehind queues the listed records for the local cache. The cache
// is best effort here; failures only warn.
func (r *Runner) cacheBehind(kind result.Kind, recs []result.Record) {
	if len(recs) == 0 {
		return
	}
	store, err := r.openCache()
	if err != nil {
		gologger.Warning().Msgf("Local cache unavailable: %v", err)
		return
	}
	defer store.Close()
	for _, rec := range recs {
		k := kind
		if k == "" {
			k = result.Envelope(rec).Type
		}
		row, err := db.FromRecord(k, rec)
		if err != nil {
			continue
		}
		store.SetResultX(row)
	}
}

// cachedResults lists results from the local cache without calling the
// console. -result shows a single cached row.
func (r *Runner) cachedResults(ctx context.Context, kind result.Kind) error {
	store, err := r.openCache()
	if err != nil {
		return err
	}
	defer store.Close()

	if r.options.ResultID != "" {
		row, err := store.GetByID(ctx, r.options.ResultID)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Errorf("result %s is not cached", r.options.ResultID)
		}
		if err != nil {
			return err
		}
		printRecords(result.Kind(row.Kind), []result.Record{row.Record})
		return nil
	}

	f := sqlite.Filter{
		TaskID:  r.firstTask(),
		Kind:    string(kind),
		Keyword: r.options.Search,
	}
	rows, err := store.SelectPage(ctx, f, r.options.Page, r.options.PageSize)
	if err != nil {
		return err
	}
	total, err := store.CountFiltered(ctx, f)
	if err != nil {
		return err
	}
	for _, row := range rows {
		printRecords(result.Kind(row.Kind), []result.Record{row.Record})
	}
	gologger.Info().Msgf("Showing %d of %d cached results", len(rows), total)
	return nil
}

// forget drops the cached rows of taskID so the next sync treats every
// result as new.
func (r *Runner) forget(ctx context.Context, store *sqlite.Store, taskID string) error {
	n, err := store.DeleteTask(ctx, taskID)
	if err != nil {
		return errors.Wrapf(err, "reset cache of task %s", taskID)
	}
	gologger.Info().Msgf("Dropped %d cached results of task %s", n, taskID)
	return nil
}
