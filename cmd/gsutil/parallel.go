package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/output"
)

// forEachObject runs fn for every id with at most the configured number of
// calls in flight. One result is returned per id, in input order; a failure
// does not stop the remaining calls.
func forEachObject(ctx context.Context, ids []gsutil.ObjectID, fn func(context.Context, gsutil.ObjectID) error) []output.Result {
	limit := 1
	if cfg, err := config.FromContext(ctx); err == nil {
		limit = cfg.Transfer.Parallelism
	}

	results := make([]output.Result, len(ids))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = output.Result{URL: id.String(), Err: fn(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func hasFailures(results []output.Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}
