package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/gcs"
)

var (
	lsLong      bool
	lsRecursive bool
)

var lsCmd = &cobra.Command{
	Use:   "ls [url...]",
	Short: "List buckets or objects",
	Long: `List buckets, or the objects under one or more URLs.

Without a URL the buckets of --project are listed. A bucket or prefix lists
one level, with deeper names shown as directories, unless -r is given.

Examples:
  gsutil ls --project my-project
  gsutil ls gs://bucket
  gsutil ls -l gs://bucket/logs/
  gsutil ls -r gs://bucket/logs
  gsutil ls 'gs://bucket/**/*.json'`,
	RunE: runList,
}

func init() {
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "show size and modification time")
	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "r", false, "list every object beneath each URL")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	formatter := getFormatter()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		cfg, err := config.FromContext(ctx)
		if err != nil {
			return err
		}
		if cfg.Project == "" {
			return errors.New("no project specified: use --project or GSUTIL_PROJECT")
		}
		buckets, err := svc.ListBuckets(ctx, cfg.Project)
		if err != nil {
			return err
		}
		return formatter.FormatBuckets(out, buckets, lsLong)
	}

	for _, arg := range args {
		id, err := gsutil.ParseURL(arg)
		if err != nil {
			return err
		}

		var (
			objects  []*storage.Object
			prefixes []string
		)
		if id.HasWildcard() {
			objects, err = svc.Glob(ctx, id.Bucket, id.Object)
		} else {
			objects, prefixes, err = listURL(ctx, svc, id, lsRecursive)
		}
		if err != nil {
			return err
		}
		if id.HasObject() && len(objects) == 0 && len(prefixes) == 0 {
			return fmt.Errorf("no URLs matched: %s", arg)
		}

		if err := formatter.FormatObjects(out, id.Bucket, objects, prefixes, lsLong); err != nil {
			return err
		}
	}
	return nil
}

// listURL lists the objects named by a non-wildcard URL. A name without a
// trailing slash matches the object itself or a directory of that name.
func listURL(ctx context.Context, svc *gcs.Service, id gsutil.ObjectID, recursive bool) ([]*storage.Object, []string, error) {
	opts := gcs.ListOptions{Prefix: id.Object}
	if !recursive {
		opts.Delimiter = "/"
	}
	objects, prefixes, err := svc.ListAllObjects(ctx, id.Bucket, opts)
	if err != nil {
		return nil, nil, err
	}
	if !id.HasObject() || strings.HasSuffix(id.Object, "/") {
		return objects, prefixes, nil
	}

	dir := id.Object + "/"
	var matched []*storage.Object
	for _, obj := range objects {
		if obj.Name == id.Object || strings.HasPrefix(obj.Name, dir) {
			matched = append(matched, obj)
		}
	}
	if recursive || !slices.Contains(prefixes, dir) {
		return matched, nil, nil
	}

	inner, innerPrefixes, err := svc.ListAllObjects(ctx, id.Bucket, gcs.ListOptions{Prefix: dir, Delimiter: "/"})
	if err != nil {
		return nil, nil, err
	}
	return append(matched, inner...), innerPrefixes, nil
}
