package output

import (
	"fmt"
	"io"
	"strings"

	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil/config"
)

const (
	ansiCyan  = "\x1b[36m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
	Color bool
}

func (f *HumanFormatter) paint(color, s string) string {
	if !f.Color {
		return s
	}
	return color + s + ansiReset
}

// FormatObjects prints one URL per line, or size, update time and URL with
// a TOTAL line when long is set.
func (f *HumanFormatter) FormatObjects(w io.Writer, bucket string, objects []*storage.Object, prefixes []string, long bool) error {
	for _, p := range prefixes {
		if long {
			_, _ = fmt.Fprintf(w, "%10s  %20s  %s\n", "", "", objectURL(bucket, p))
		} else {
			_, _ = fmt.Fprintln(w, objectURL(bucket, p))
		}
	}

	var total uint64
	for _, obj := range objects {
		total += obj.Size
		if long {
			_, _ = fmt.Fprintf(w, "%10d  %20s  %s\n", obj.Size, obj.Updated, objectURL(bucket, obj.Name))
		} else {
			_, _ = fmt.Fprintln(w, objectURL(bucket, obj.Name))
		}
	}

	if long {
		_, _ = fmt.Fprintf(w, "TOTAL: %d objects, %d bytes (%s)\n", len(objects), total, formatSize(total))
	}
	return nil
}

// FormatBuckets prints one bucket URL per line.
func (f *HumanFormatter) FormatBuckets(w io.Writer, buckets []*storage.Bucket, long bool) error {
	for _, b := range buckets {
		if long {
			_, _ = fmt.Fprintf(w, "%-8s  %-10s  %20s  gs://%s/\n", b.Location, b.StorageClass, b.TimeCreated, b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "gs://%s/\n", b.Name)
	}
	return nil
}

// FormatStat prints object metadata in gsutil's stat layout.
func (f *HumanFormatter) FormatStat(w io.Writer, url string, obj *storage.Object) error {
	_, _ = fmt.Fprintln(w, f.paint(ansiCyan, url))
	_, _ = fmt.Fprintf(w, "    Creation time:\t%s\n", rfc2822(obj.TimeCreated))
	_, _ = fmt.Fprintf(w, "    Update time:\t%s\n", rfc2822(obj.Updated))
	_, _ = fmt.Fprintf(w, "    Storage class:\t%s\n", obj.StorageClass)
	_, _ = fmt.Fprintf(w, "    Content-Length:\t%d\n", obj.Size)
	_, _ = fmt.Fprintf(w, "    Content-Type:\t%s\n", orNone(obj.ContentType))
	if obj.ContentEncoding != "" && obj.ContentEncoding != "identity" {
		_, _ = fmt.Fprintf(w, "    Content-Encoding:\t%s\n", obj.ContentEncoding)
	}
	if obj.CacheControl != "" {
		_, _ = fmt.Fprintf(w, "    Cache-Control:\t%s\n", obj.CacheControl)
	}
	for _, k := range sortedKeys(obj.Metadata) {
		_, _ = fmt.Fprintf(w, "        %s:\t\t%s\n", k, obj.Metadata[k])
	}
	_, _ = fmt.Fprintf(w, "    Hash (crc32c):\t%s\n", obj.Crc32c)
	_, _ = fmt.Fprintf(w, "    Hash (md5):\t\t%s\n", obj.Md5Hash)
	_, _ = fmt.Fprintf(w, "    ETag:\t\t%s\n", obj.Etag)
	_, _ = fmt.Fprintf(w, "    Generation:\t\t%d\n", obj.Generation)
	_, _ = fmt.Fprintf(w, "    Metageneration:\t%d\n", obj.Metageneration)
	return nil
}

// FormatCopy reports a finished copy unless quiet.
func (f *HumanFormatter) FormatCopy(w io.Writer, result CopyResult) error {
	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "Copied %s -> %s (%s)\n", result.Source, result.Destination, formatSize(uint64(max(result.Size, 0))))
	}
	return nil
}

// FormatDelete reports each removal. Failures are always printed.
func (f *HumanFormatter) FormatDelete(w io.Writer, results []Result) error {
	return f.formatResults(w, results, "Removed")
}

// FormatSetMeta reports each metadata update. Failures are always printed.
func (f *HumanFormatter) FormatSetMeta(w io.Writer, results []Result) error {
	return f.formatResults(w, results, "Updated")
}

func (f *HumanFormatter) formatResults(w io.Writer, results []Result, verb string) error {
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", f.paint(ansiRed, "Error:"), r.URL, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "%s %s\n", verb, r.URL)
		}
	}
	return nil
}

// FormatSignedURL prints one URL per line.
func (f *HumanFormatter) FormatSignedURL(w io.Writer, urls []SignedURL) error {
	for _, u := range urls {
		_, _ = fmt.Fprintln(w, u.URL)
	}
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "%s %v\n", f.paint(ansiRed, "Error:"), err)
	return nil
}

// FormatProfileList prints a table of profiles with the default marked "*".
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []config.Profile) error {
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(w, "No profiles configured")
		return nil
	}

	maxNameLen := 4    // "NAME"
	maxProjectLen := 7 // "PROJECT"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxProjectLen = max(maxProjectLen, len(profiles[i].Project))
	}
	maxNameLen = min(maxNameLen, 20)
	maxProjectLen = min(maxProjectLen, 30)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxProjectLen, "PROJECT", "CREDENTIALS")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxProjectLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Default {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n",
			marker,
			maxNameLen, truncate(p.Name, maxNameLen),
			maxProjectLen, truncate(p.Project, maxProjectLen),
			credentialsLabel(p.Credentials),
		)
	}
	return nil
}

// FormatProfileShow prints every setting of one profile.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, p config.Profile) error {
	_, _ = fmt.Fprintf(w, "Name:         %s", p.Name)
	if p.Default {
		_, _ = fmt.Fprint(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Credentials:  %s\n", credentialsLabel(p.Credentials))
	_, _ = fmt.Fprintf(w, "Project:      %s\n", orNotSet(p.Project))
	_, _ = fmt.Fprintf(w, "Endpoint:     %s\n", orNotSet(p.Endpoint))
	_, _ = fmt.Fprintf(w, "Token cache:  %s\n", orNotSet(p.TokenCache))
	_, _ = fmt.Fprintf(w, "Scheme:       %s\n", orNotSet(p.Scheme))
	_, _ = fmt.Fprintf(w, "Duration:     %s\n", orNotSet(p.Duration))
	if p.Parallelism > 0 {
		_, _ = fmt.Fprintf(w, "Parallelism:  %d\n", p.Parallelism)
	}
	if p.RateLimit > 0 {
		_, _ = fmt.Fprintf(w, "Rate limit:   %g/s\n", p.RateLimit)
	}
	if p.LogLevel != "" || p.LogFormat != "" {
		_, _ = fmt.Fprintf(w, "Log:          %s %s\n", orNotSet(p.LogLevel), p.LogFormat)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func credentialsLabel(path string) string {
	if path == "" {
		return "(application default)"
	}
	return path
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
