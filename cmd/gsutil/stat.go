package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil"
)

var statCmd = &cobra.Command{
	Use:   "stat <url> [url...]",
	Short: "Show object metadata",
	Long: `Show metadata for one or more objects.

Examples:
  gsutil stat gs://bucket/report.pdf
  gsutil stat 'gs://bucket/reports/*.pdf'
  gsutil stat --json gs://bucket/report.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ids, err := expandAll(ctx, svc, args, false)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	objects := make(map[gsutil.ObjectID]*storage.Object, len(ids))
	results := forEachObject(ctx, ids, func(ctx context.Context, id gsutil.ObjectID) error {
		obj, err := svc.GetObject(ctx, id)
		if err != nil {
			return err
		}
		mu.Lock()
		objects[id] = obj
		mu.Unlock()
		return nil
	})

	formatter := getFormatter()
	for i, r := range results {
		if r.Err != nil {
			_ = formatter.FormatError(cmd.ErrOrStderr(), r.Err)
			continue
		}
		if err := formatter.FormatStat(cmd.OutOrStdout(), r.URL, objects[ids[i]]); err != nil {
			return err
		}
	}

	if hasFailures(results) {
		return &exitError{code: 1}
	}
	return nil
}
