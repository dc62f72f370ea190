package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil/config"
)

// Formatter formats results for output.
type Formatter interface {
	FormatObjects(w io.Writer, bucket string, objects []*storage.Object, prefixes []string, long bool) error
	FormatBuckets(w io.Writer, buckets []*storage.Bucket, long bool) error
	FormatStat(w io.Writer, url string, obj *storage.Object) error
	FormatCopy(w io.Writer, result CopyResult) error
	FormatDelete(w io.Writer, results []Result) error
	FormatSetMeta(w io.Writer, results []Result) error
	FormatSignedURL(w io.Writer, urls []SignedURL) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []config.Profile) error
	FormatProfileShow(w io.Writer, profile config.Profile) error
}

// CopyResult describes a finished cp.
type CopyResult struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Size        int64  `json:"size_bytes"`
}

// Result is the outcome for one URL of a multi-URL command.
type Result struct {
	URL string
	Err error
}

// SignedURL is one signed URL with its validity.
type SignedURL struct {
	Object  string    `json:"object"`
	Method  string    `json:"method"`
	URL     string    `json:"url"`
	Expires time.Time `json:"expires"`
}

// NewFormatter returns the appropriate formatter based on flags. Colour is
// used for human output when stdout is a terminal and NO_COLOR is unset.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet, Color: ColorEnabled(os.Stdout)}
}

// ColorEnabled reports whether ANSI colour should be written to f.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// objectURL joins bucket and name into a gs:// URL.
func objectURL(bucket, name string) string {
	return "gs://" + bucket + "/" + name
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatSize formats bytes with binary units the way gsutil does.
func formatSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KiB", "MiB", "GiB", "TiB", "PiB"}
	value := float64(bytes) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}

// rfc2822 reformats an RFC 3339 timestamp, returning s unchanged when it does
// not parse.
func rfc2822(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC1123Z)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
