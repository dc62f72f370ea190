package gcs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/gcs"
)

func TestParseHeaderPatch(t *testing.T) {
	patch, err := gcs.ParseHeaderPatch([]string{"Content-Language:en", "content-disposition", "X-Goog-Meta-Color: blue"})
	require.NoError(t, err)

	require.Contains(t, patch.Fields, "contentLanguage")
	assert.Equal(t, "en", *patch.Fields["contentLanguage"])
	require.Contains(t, patch.Fields, "contentDisposition")
	assert.Nil(t, patch.Fields["contentDisposition"])
	require.Contains(t, patch.Metadata, "color")
	assert.Equal(t, "blue", *patch.Metadata["color"])

	for _, bad := range []string{"x-custom:1", ":v", "x-goog-meta-:v"} {
		_, err := gcs.ParseHeaderPatch([]string{bad})
		assert.ErrorIs(t, err, gsutil.ErrValidation, bad)
	}
}

func TestParsePredefinedACL(t *testing.T) {
	tests := []struct {
		in      string
		want    gcs.PredefinedACL
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "publicRead", want: gcs.ACLPublicRead},
		{in: "public-read", want: gcs.ACLPublicRead},
		{in: "PRIVATE", want: gcs.ACLPrivate},
		{in: "bucket-owner-full-control", want: gcs.ACLBucketOwnerFullControl},
		{in: "world-writable", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := gcs.ParsePredefinedACL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, gsutil.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStaticPrefix(t *testing.T) {
	tests := map[string]string{
		"logs/2024/*.log": "logs/2024/",
		"logs/**":         "logs/",
		"*.txt":           "",
		"a/b/c.txt":       "a/b/c.txt",
		`dir\*/x/*`:       "dir*/x/",
		"pre{a,b}/x":      "",
	}
	for pattern, want := range tests {
		assert.Equal(t, want, gcs.StaticPrefix(pattern), pattern)
	}
}
