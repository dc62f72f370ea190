package main

import (
	"github.com/spf13/cobra"
)

var rmRecursive bool

var rmCmd = &cobra.Command{
	Use:   "rm <url> [url...]",
	Short: "Remove objects",
	Long: `Remove one or more objects.

Wildcards expand to the matching objects. With -r a bucket or prefix expands
to every object beneath it. Removals run in parallel; each URL is reported
and the command exits non-zero if any removal failed.

Examples:
  gsutil rm gs://bucket/old.txt
  gsutil rm 'gs://bucket/tmp/*.log'
  gsutil rm -r gs://bucket/cache`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "remove every object beneath each URL")
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	ids, err := expandAll(ctx, svc, args, rmRecursive)
	if err != nil {
		return err
	}

	results := forEachObject(ctx, ids, svc.DeleteObject)
	if err := getFormatter().FormatDelete(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if hasFailures(results) {
		return &exitError{code: 1}
	}
	return nil
}
