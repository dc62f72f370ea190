package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/output"
)

func sampleObject() *storage.Object {
	return &storage.Object{
		Bucket:         "bucket-a",
		Name:           "dir/obj.txt",
		Size:           2048,
		ContentType:    "text/plain",
		StorageClass:   "STANDARD",
		TimeCreated:    "2024-01-02T03:04:05Z",
		Updated:        "2024-01-03T04:05:06Z",
		Crc32c:         "yZRlqg==",
		Md5Hash:        "XrY7u+Ae7tCTyyK7j1rNww==",
		Etag:           "CKih16GjycICEAE=",
		Generation:     1700000000000001,
		Metageneration: 2,
		Metadata:       map[string]string{"owner": "qa", "env": "test"},
	}
}

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := output.NewFormatter(true, false).(*output.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := output.NewFormatter(false, true).(*output.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatStat(t *testing.T) {
	var buf bytes.Buffer
	f := &output.HumanFormatter{}
	require.NoError(t, f.FormatStat(&buf, "gs://bucket-a/dir/obj.txt", sampleObject()))

	want := "gs://bucket-a/dir/obj.txt\n" +
		"    Creation time:\tTue, 02 Jan 2024 03:04:05 +0000\n" +
		"    Update time:\tWed, 03 Jan 2024 04:05:06 +0000\n" +
		"    Storage class:\tSTANDARD\n" +
		"    Content-Length:\t2048\n" +
		"    Content-Type:\ttext/plain\n" +
		"        env:\t\ttest\n" +
		"        owner:\t\tqa\n" +
		"    Hash (crc32c):\tyZRlqg==\n" +
		"    Hash (md5):\t\tXrY7u+Ae7tCTyyK7j1rNww==\n" +
		"    ETag:\t\tCKih16GjycICEAE=\n" +
		"    Generation:\t\t1700000000000001\n" +
		"    Metageneration:\t2\n"
	assert.Equal(t, want, buf.String())
}

func TestHumanFormatter_FormatStat_Color(t *testing.T) {
	obj := sampleObject()
	obj.ContentType = ""

	var buf bytes.Buffer
	f := &output.HumanFormatter{Color: true}
	require.NoError(t, f.FormatStat(&buf, "gs://bucket-a/dir/obj.txt", obj))

	assert.Contains(t, buf.String(), "\x1b[36mgs://bucket-a/dir/obj.txt\x1b[0m\n")
	assert.Contains(t, buf.String(), "Content-Type:\tNone\n")
}

func TestHumanFormatter_FormatObjects(t *testing.T) {
	objs := []*storage.Object{
		{Name: "a.txt", Size: 1024, Updated: "2024-01-02T03:04:05Z"},
		{Name: "b.txt", Size: 512, Updated: "2024-01-02T03:04:05Z"},
	}

	t.Run("short", func(t *testing.T) {
		var buf bytes.Buffer
		f := &output.HumanFormatter{}
		require.NoError(t, f.FormatObjects(&buf, "bucket-a", objs, []string{"dir/"}, false))
		assert.Equal(t, "gs://bucket-a/dir/\ngs://bucket-a/a.txt\ngs://bucket-a/b.txt\n", buf.String())
	})

	t.Run("long", func(t *testing.T) {
		var buf bytes.Buffer
		f := &output.HumanFormatter{}
		require.NoError(t, f.FormatObjects(&buf, "bucket-a", objs, nil, true))
		assert.Contains(t, buf.String(), "      1024  2024-01-02T03:04:05Z  gs://bucket-a/a.txt\n")
		assert.Contains(t, buf.String(), "TOTAL: 2 objects, 1536 bytes (1.50 KiB)\n")
	})
}

func TestHumanFormatter_FormatBuckets(t *testing.T) {
	var buf bytes.Buffer
	f := &output.HumanFormatter{}
	require.NoError(t, f.FormatBuckets(&buf, []*storage.Bucket{{Name: "one"}, {Name: "two"}}, false))
	assert.Equal(t, "gs://one/\ngs://two/\n", buf.String())
}

func TestHumanFormatter_Results(t *testing.T) {
	results := []output.Result{
		{URL: "gs://b/ok"},
		{URL: "gs://b/bad", Err: errors.New("boom")},
	}

	t.Run("normal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.HumanFormatter{}).FormatDelete(&buf, results))
		assert.Equal(t, "Removed gs://b/ok\nError: gs://b/bad: boom\n", buf.String())
	})

	t.Run("quiet still reports failures", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&output.HumanFormatter{Quiet: true}).FormatSetMeta(&buf, results))
		assert.Equal(t, "Error: gs://b/bad: boom\n", buf.String())
	})
}

func TestHumanFormatter_FormatSignedURL(t *testing.T) {
	var buf bytes.Buffer
	urls := []output.SignedURL{{URL: "https://example/1"}, {URL: "https://example/2"}}
	require.NoError(t, (&output.HumanFormatter{}).FormatSignedURL(&buf, urls))
	assert.Equal(t, "https://example/1\nhttps://example/2\n", buf.String())
}

func TestHumanFormatter_Profiles(t *testing.T) {
	profiles := []config.Profile{
		{Name: "work", Default: true, Project: "work-project", Credentials: "/keys/work.json"},
		{Name: "adc"},
	}

	var buf bytes.Buffer
	f := &output.HumanFormatter{}
	require.NoError(t, f.FormatProfileList(&buf, profiles))
	assert.Contains(t, buf.String(), "* work")
	assert.Contains(t, buf.String(), "/keys/work.json")
	assert.Contains(t, buf.String(), "(application default)")

	buf.Reset()
	require.NoError(t, f.FormatProfileShow(&buf, profiles[0]))
	assert.Contains(t, buf.String(), "Name:         work (default)\n")
	assert.Contains(t, buf.String(), "Project:      work-project\n")
	assert.Contains(t, buf.String(), "Endpoint:     (not set)\n")

	buf.Reset()
	require.NoError(t, f.FormatProfileList(&buf, nil))
	assert.Equal(t, "No profiles configured\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	f := &output.JSONFormatter{}

	t.Run("stat", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatStat(&buf, "gs://bucket-a/dir/obj.txt", sampleObject()))

		var got struct {
			URL    string         `json:"url"`
			Object storage.Object `json:"object"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "gs://bucket-a/dir/obj.txt", got.URL)
		assert.Equal(t, "dir/obj.txt", got.Object.Name)
	})

	t.Run("empty listing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatObjects(&buf, "bucket-a", nil, nil, false))
		assert.Contains(t, buf.String(), `"objects": []`)
		assert.Contains(t, buf.String(), `"prefixes": []`)
	})

	t.Run("results", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatDelete(&buf, []output.Result{{URL: "gs://b/x", Err: errors.New("nope")}}))

		var got struct {
			Results []struct {
				URL   string `json:"url"`
				OK    bool   `json:"ok"`
				Error string `json:"error"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Results, 1)
		assert.False(t, got.Results[0].OK)
		assert.Equal(t, "nope", got.Results[0].Error)
	})

	t.Run("signed url", func(t *testing.T) {
		var buf bytes.Buffer
		exp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, f.FormatSignedURL(&buf, []output.SignedURL{{Object: "gs://b/o", Method: "GET", URL: "https://x", Expires: exp}}))
		assert.Contains(t, buf.String(), `"expires": "2024-01-01T00:00:00Z"`)
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("bad thing")))
		assert.JSONEq(t, `{"error":"bad thing"}`, buf.String())
	})

	t.Run("profile", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatProfileShow(&buf, config.Profile{Name: "p", Default: true, Project: "x"}))
		assert.JSONEq(t, `{"name":"p","default":true,"project":"x"}`, buf.String())
	})
}
