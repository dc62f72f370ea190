package output

import (
	"io"

	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil/config"
)

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

type jsonResult struct {
	URL   string `json:"url"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func toJSONResults(results []Result) []jsonResult {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{URL: r.URL, OK: r.Err == nil}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

// FormatObjects writes the listing as {"objects": [...], "prefixes": [...]}.
func (f *JSONFormatter) FormatObjects(w io.Writer, bucket string, objects []*storage.Object, prefixes []string, long bool) error {
	if objects == nil {
		objects = []*storage.Object{}
	}
	if prefixes == nil {
		prefixes = []string{}
	}
	var total uint64
	for _, obj := range objects {
		total += obj.Size
	}
	return writeJSON(w, struct {
		Bucket    string            `json:"bucket"`
		Objects   []*storage.Object `json:"objects"`
		Prefixes  []string          `json:"prefixes"`
		TotalSize uint64            `json:"total_size_bytes"`
	}{bucket, objects, prefixes, total})
}

// FormatBuckets writes {"buckets": [...]}.
func (f *JSONFormatter) FormatBuckets(w io.Writer, buckets []*storage.Bucket, long bool) error {
	if buckets == nil {
		buckets = []*storage.Bucket{}
	}
	return writeJSON(w, struct {
		Buckets []*storage.Bucket `json:"buckets"`
	}{buckets})
}

// FormatStat writes the object resource along with its URL.
func (f *JSONFormatter) FormatStat(w io.Writer, url string, obj *storage.Object) error {
	return writeJSON(w, struct {
		URL    string          `json:"url"`
		Object *storage.Object `json:"object"`
	}{url, obj})
}

// FormatCopy formats a copy result as JSON.
func (f *JSONFormatter) FormatCopy(w io.Writer, result CopyResult) error {
	return writeJSON(w, result)
}

// FormatDelete formats delete results as JSON.
func (f *JSONFormatter) FormatDelete(w io.Writer, results []Result) error {
	return writeJSON(w, struct {
		Results []jsonResult `json:"results"`
	}{toJSONResults(results)})
}

// FormatSetMeta formats metadata update results as JSON.
func (f *JSONFormatter) FormatSetMeta(w io.Writer, results []Result) error {
	return writeJSON(w, struct {
		Results []jsonResult `json:"results"`
	}{toJSONResults(results)})
}

// FormatSignedURL formats signed URLs as JSON.
func (f *JSONFormatter) FormatSignedURL(w io.Writer, urls []SignedURL) error {
	return writeJSON(w, struct {
		URLs []SignedURL `json:"urls"`
	}{urls})
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{err.Error()})
}

type jsonProfile struct {
	Name        string  `json:"name"`
	Default     bool    `json:"default"`
	Credentials string  `json:"credentials,omitempty"`
	Project     string  `json:"project,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty"`
	TokenCache  string  `json:"token_cache,omitempty"`
	Scheme      string  `json:"scheme,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Parallelism int     `json:"parallelism,omitempty"`
	RateLimit   float64 `json:"rate_limit,omitempty"`
	LogLevel    string  `json:"log_level,omitempty"`
	LogFormat   string  `json:"log_format,omitempty"`
}

func toJSONProfile(p config.Profile) jsonProfile {
	return jsonProfile(p)
}

// FormatProfileList formats profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []config.Profile) error {
	out := make([]jsonProfile, len(profiles))
	for i := range profiles {
		out[i] = toJSONProfile(profiles[i])
	}
	return writeJSON(w, struct {
		Profiles []jsonProfile `json:"profiles"`
	}{out})
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile config.Profile) error {
	return writeJSON(w, toJSONProfile(profile))
}
