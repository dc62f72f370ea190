package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/gcs"
)

var setmetaHeaders []string

var setmetaCmd = &cobra.Command{
	Use:   "setmeta -h <header> [-h <header>...] <url> [url...]",
	Short: "Set metadata on existing objects",
	Long: `Set or remove metadata on existing objects.

Each -h takes "Name:value" to set a header or "Name" to remove it. The
settable headers are Cache-Control, Content-Disposition, Content-Encoding,
Content-Language, Content-Type and custom x-goog-meta-* keys.

Examples:
  gsutil setmeta -h "Content-Type:text/html" gs://bucket/index.html
  gsutil setmeta -h "x-goog-meta-owner:ops" -h "Cache-Control" 'gs://bucket/*.html'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSetMeta,
}

func init() {
	setmetaCmd.Flags().StringArrayVarP(&setmetaHeaders, "header", "h", nil, `header to set ("Name:value") or remove ("Name")`)
}

func runSetMeta(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	patch, err := gcs.ParseHeaderPatch(setmetaHeaders)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return gsutil.NewValidationError("header", "", "at least one -h header is required")
	}

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ids, err := expandAll(ctx, svc, args, false)
	if err != nil {
		return err
	}

	results := forEachObject(ctx, ids, func(ctx context.Context, id gsutil.ObjectID) error {
		_, err := svc.PatchObject(ctx, id, patch)
		return err
	})
	if err := getFormatter().FormatSetMeta(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if hasFailures(results) {
		return &exitError{code: 1}
	}
	return nil
}
