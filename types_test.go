package gsutil_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil"
)

func TestParseURL(t *testing.T) {
	tt := []struct {
		Name    string
		URL     string
		Want    gsutil.ObjectID
		WantErr string
	}{
		{Name: "bucket only", URL: "gs://bucket-a", Want: gsutil.ObjectID{Bucket: "bucket-a"}},
		{Name: "bucket trailing slash", URL: "gs://bucket-a/", Want: gsutil.ObjectID{Bucket: "bucket-a"}},
		{Name: "object", URL: "gs://bucket-a/obj.txt", Want: gsutil.ObjectID{Bucket: "bucket-a", Object: "obj.txt"}},
		{Name: "nested object", URL: "gs://bucket-a/a/b/c.txt", Want: gsutil.ObjectID{Bucket: "bucket-a", Object: "a/b/c.txt"}},
		{Name: "object with query chars", URL: "gs://bucket-a/a?b#c", Want: gsutil.ObjectID{Bucket: "bucket-a", Object: "a?b#c"}},
		{Name: "prefix", URL: "gs://bucket-a/logs/", Want: gsutil.ObjectID{Bucket: "bucket-a", Object: "logs/"}},
		{Name: "empty", URL: "", WantErr: "empty url"},
		{Name: "wrong scheme", URL: "s3://bucket-a/obj", WantErr: "invalid url scheme: s3"},
		{Name: "no scheme", URL: "bucket-a/obj", WantErr: "missing scheme"},
		{Name: "no bucket", URL: "gs:///obj", WantErr: "no bucket specified"},
		{Name: "invalid bucket", URL: "gs://UPPER/obj", WantErr: "invalid bucket name"},
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := gsutil.ParseURL(tc.URL)
			if tc.WantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.WantErr)
				assert.True(t, errors.Is(err, gsutil.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Want, got)
		})
	}
}

func TestObjectID_RequireObject(t *testing.T) {
	err := gsutil.ObjectID{Bucket: "bucket-a"}.RequireObject()
	require.Error(t, err)
	assert.ErrorIs(t, err, gsutil.ErrValidation)

	assert.NoError(t, gsutil.ObjectID{Bucket: "bucket-a", Object: "x"}.RequireObject())
}

func TestObjectID_Join(t *testing.T) {
	assert.Equal(t, "gs://b-1/file.txt", gsutil.ObjectID{Bucket: "b-1"}.Join("file.txt").String())
	assert.Equal(t, "gs://b-1/dir/file.txt", gsutil.ObjectID{Bucket: "b-1", Object: "dir"}.Join("file.txt").String())
	assert.Equal(t, "gs://b-1/dir/file.txt", gsutil.ObjectID{Bucket: "b-1", Object: "dir/"}.Join("file.txt").String())
}

func TestObjectID_HasWildcard(t *testing.T) {
	assert.True(t, gsutil.ObjectID{Bucket: "b-1", Object: "logs/*.txt"}.HasWildcard())
	assert.True(t, gsutil.ObjectID{Bucket: "b-1", Object: "logs/**"}.HasWildcard())
	assert.False(t, gsutil.ObjectID{Bucket: "b-1", Object: "logs/a.txt"}.HasWildcard())
}

func TestIsURL(t *testing.T) {
	assert.True(t, gsutil.IsURL("gs://bucket"))
	assert.False(t, gsutil.IsURL("./local/file"))
	assert.False(t, gsutil.IsURL("/abs/gs://x"))
}
