package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/gcs"
	"github.com/sagarc03/gsutil/output"
)

// stdio names standard input or output in place of a local path.
const stdio = "-"

var (
	cpACL         string
	cpContentType string
)

var cpCmd = &cobra.Command{
	Use:   "cp <src> <dst>",
	Short: "Copy a file to or from a bucket",
	Long: `Copy a local file to a bucket, or an object to local disk.

A destination ending in "/", or naming only a bucket, receives the source's
base name. A local directory destination receives the object's base name.
Use "-" to read the upload from stdin or write the download to stdout.

Examples:
  gsutil cp report.pdf gs://bucket/reports/
  gsutil cp -a publicRead -z text/html index.html gs://bucket/index.html
  gsutil cp gs://bucket/reports/report.pdf ./downloads/
  gsutil cp gs://bucket/config.json - | jq .`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

func init() {
	cpCmd.Flags().StringVarP(&cpACL, "canned-acl", "a", "", "predefined ACL applied to uploads (e.g. publicRead)")
	cpCmd.Flags().StringVarP(&cpContentType, "content-type", "z", "", "content type of uploads (default: detected)")
}

func runCopy(cmd *cobra.Command, args []string) error {
	src, dst := args[0], args[1]

	switch srcRemote, dstRemote := isRemote(src), isRemote(dst); {
	case !srcRemote && !dstRemote:
		return errors.New("source and destination are both located on local disk")
	case srcRemote && dstRemote:
		return errors.New("source and destination are both located on gcs")
	case srcRemote:
		return runDownload(cmd, src, dst)
	default:
		return runUpload(cmd, src, dst)
	}
}

func runUpload(cmd *cobra.Command, src, dst string) error {
	ctx := cmd.Context()

	dstID, err := gsutil.ParseURL(dst)
	if err != nil {
		return err
	}
	if !dstID.HasObject() || strings.HasSuffix(dstID.Object, "/") {
		if src == stdio {
			return errors.New("an object name is required when uploading from stdin")
		}
		dstID = dstID.Join(filepath.Base(src))
	}

	acl, err := gcs.ParsePredefinedACL(cpACL)
	if err != nil {
		return err
	}

	data, err := readSource(cmd, src)
	if err != nil {
		return err
	}

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	obj, err := svc.InsertObject(ctx, dstID, bytes.NewReader(data), gcs.InsertOptions{
		ContentType:   contentType(src, data),
		PredefinedACL: acl,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatCopy(cmd.OutOrStdout(), output.CopyResult{
		Source:      src,
		Destination: dstID.String(),
		Size:        int64(obj.Size),
	})
}

func runDownload(cmd *cobra.Command, src, dst string) error {
	ctx := cmd.Context()

	srcID, err := gsutil.ParseURL(src)
	if err != nil {
		return err
	}
	if err := srcID.RequireObject(); err != nil {
		return err
	}

	svc, closeFn, err := newService(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := svc.Download(ctx, srcID, gcs.DownloadOptions{})
	if err != nil {
		return err
	}

	if dst == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	target := localTarget(dst, srcID)
	if err := gcs.WriteFileAtomic(target, data); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	return getFormatter().FormatCopy(cmd.OutOrStdout(), output.CopyResult{
		Source:      srcID.String(),
		Destination: target,
		Size:        int64(len(data)),
	})
}

func readSource(cmd *cobra.Command, src string) ([]byte, error) {
	if src == stdio {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return data, nil
}

// contentType returns the -z value, else a type guessed from the file
// extension, else one sniffed from the content.
func contentType(src string, data []byte) string {
	if cpContentType != "" {
		return cpContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(src)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// localTarget resolves the file written for a download to dst.
func localTarget(dst string, src gsutil.ObjectID) string {
	if strings.HasSuffix(dst, string(os.PathSeparator)) || strings.HasSuffix(dst, "/") {
		return filepath.Join(dst, path.Base(src.Object))
	}
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return filepath.Join(dst, path.Base(src.Object))
	}
	return dst
}
