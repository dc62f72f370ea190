package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/gcs"
)

// isRemote reports whether arg names a cloud location. Any scheme counts so
// that unsupported ones fail URL parsing instead of being read as local paths.
func isRemote(arg string) bool {
	return strings.Contains(arg, "://")
}

// expandObjects resolves a URL argument to the objects it names. Wildcards
// are matched against the bucket listing; with recursive set a bucket or
// prefix expands to everything beneath it.
func expandObjects(ctx context.Context, svc *gcs.Service, raw string, recursive bool) ([]gsutil.ObjectID, error) {
	id, err := gsutil.ParseURL(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case id.HasWildcard():
		objects, err := svc.Glob(ctx, id.Bucket, id.Object)
		if err != nil {
			return nil, err
		}
		if len(objects) == 0 {
			return nil, fmt.Errorf("no URLs matched: %s", raw)
		}
		ids := make([]gsutil.ObjectID, 0, len(objects))
		for _, obj := range objects {
			ids = append(ids, gsutil.ObjectID{Bucket: id.Bucket, Object: obj.Name})
		}
		return ids, nil

	case recursive:
		prefix := ""
		if id.HasObject() {
			prefix = id.Join("").Object
		}
		objects, _, err := svc.ListAllObjects(ctx, id.Bucket, gcs.ListOptions{Prefix: prefix})
		if err != nil {
			return nil, err
		}
		if len(objects) == 0 {
			if id.HasObject() {
				return []gsutil.ObjectID{id}, nil
			}
			return nil, fmt.Errorf("no URLs matched: %s", raw)
		}
		ids := make([]gsutil.ObjectID, 0, len(objects))
		for _, obj := range objects {
			ids = append(ids, gsutil.ObjectID{Bucket: id.Bucket, Object: obj.Name})
		}
		return ids, nil

	default:
		if err := id.RequireObject(); err != nil {
			return nil, err
		}
		return []gsutil.ObjectID{id}, nil
	}
}

// expandAll expands every argument in order.
func expandAll(ctx context.Context, svc *gcs.Service, args []string, recursive bool) ([]gsutil.ObjectID, error) {
	var ids []gsutil.ObjectID
	for _, arg := range args {
		expanded, err := expandObjects(ctx, svc, arg, recursive)
		if err != nil {
			return nil, err
		}
		ids = append(ids, expanded...)
	}
	return ids, nil
}
