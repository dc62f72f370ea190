package main

import (
	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil/gcs"
)

var catRange string

var catCmd = &cobra.Command{
	Use:   "cat [-r range] <url> [url...]",
	Short: "Write object contents to stdout",
	Long: `Write the contents of one or more objects to stdout, in order.

A range selects bytes: "a-b" (inclusive), "a-" (from a to the end) or "-n"
(the last n bytes).

Examples:
  gsutil cat gs://bucket/notes.txt
  gsutil cat -r 0-99 gs://bucket/big.log
  gsutil cat -r -512 'gs://bucket/logs/*.log'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCat,
}

func init() {
	catCmd.Flags().StringVarP(&catRange, "range", "r", "", "byte range to print")
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if catRange != "" {
		if _, err := gcs.RangeHeader(catRange); err != nil {
			return err
		}
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

	out := cmd.OutOrStdout()
	for _, id := range ids {
		data, err := svc.Download(ctx, id, gcs.DownloadOptions{Range: catRange})
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}
	return nil
}
