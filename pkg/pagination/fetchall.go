package pagination

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/zan8in/moongazing/pkg/api"
	"github.com/zan8in/moongazing/pkg/result"
)

const DefaultWorkers = 4

// MaxPages bounds one FetchAll run. The page count comes from the
// backend's total, so a bogus total must not size allocations.
const MaxPages = 5000

// FetchAll reads the first page to learn the total, then fetches the rest
// on a bounded pool. Records come back in page order. The first failure
// cancels the remaining requests and is returned. A short first page ends
// the run, and a total needing more than MaxPages pages is an error.
func FetchAll[T any](ctx context.Context, c api.Caller, e Endpoint, q Query, transform func(result.Record) T, workers int) ([]T, int64, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	first, err := Fetch(ctx, c, e, q, transform)
	if err != nil {
		return nil, 0, err
	}

	size := first.Data.PageSize
	if size <= 0 {
		_, size = e.Requested(q)
	}
	total := first.Data.Total
	start := first.Data.Page
	if len(first.Data.List) < size {
		return first.Data.List, total, nil
	}
	pageCount := (total + int64(size) - 1) / int64(size)
	if pageCount <= int64(start) {
		return first.Data.List, total, nil
	}
	if pageCount-int64(start)+1 > MaxPages {
		return nil, 0, errors.Errorf("total %d needs %d pages of %d, over the limit of %d", total, pageCount, size, MaxPages)
	}
	last := int(pageCount)

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create page pool")
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pages := make([][]T, last-start+1)
	pages[0] = first.Data.List

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for p := start + 1; p <= last; p++ {
		p := p
		pq := make(Query, len(q)+2)
		for k, v := range q {
			pq[k] = v
		}
		pq["page"] = p
		pq["pageSize"] = size

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			resp, err := Fetch(ctx, c, e, pq, transform)
			if err != nil {
				fail(errors.Wrapf(err, "fetch page %d", p))
				return
			}
			pages[p-start] = resp.Data.List
		})
		if err != nil {
			wg.Done()
			fail(errors.Wrap(err, "submit page fetch"))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, 0, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	n := 0
	for _, list := range pages {
		n += len(list)
	}
	all := make([]T, 0, n)
	for _, list := range pages {
		all = append(all, list...)
	}
	return all, total, nil
}
