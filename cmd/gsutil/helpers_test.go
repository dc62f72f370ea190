package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/oauth"
)

func TestIsRemote(t *testing.T) {
	tests := []struct {
		Arg  string
		Want bool
	}{
		{Arg: "gs://bucket/obj", Want: true},
		{Arg: "s3://bucket/obj", Want: true},
		{Arg: "./local/file", Want: false},
		{Arg: "-", Want: false},
		{Arg: "C:\\data\\file", Want: false},
	}

	for _, tc := range tests {
		t.Run(tc.Arg, func(t *testing.T) {
			assert.Equal(t, tc.Want, isRemote(tc.Arg))
		})
	}
}

func TestLocalTarget(t *testing.T) {
	dir := t.TempDir()
	src := gsutil.ObjectID{Bucket: "bucket-a", Object: "deep/path/file.txt"}

	assert.Equal(t, filepath.Join(dir, "file.txt"), localTarget(dir, src))
	assert.Equal(t, filepath.Join("out", "file.txt"), localTarget("out/", src))
	assert.Equal(t, filepath.Join(dir, "renamed.txt"), localTarget(filepath.Join(dir, "renamed.txt"), src))
}

func TestParseSignHeaders(t *testing.T) {
	headers, err := parseSignHeaders([]string{"x-goog-meta-a: 1", "X-Goog-Meta-A:2", "Content-MD5:abc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, headers.Values("X-Goog-Meta-A"))
	assert.Equal(t, "abc", headers.Get("Content-Md5"))

	_, err = parseSignHeaders([]string{"no-colon"})
	assert.ErrorIs(t, err, gsutil.ErrValidation)

	_, err = parseSignHeaders([]string{":value"})
	assert.ErrorIs(t, err, gsutil.ErrValidation)
}

func TestCacheAccount(t *testing.T) {
	gcloud := t.TempDir()
	t.Setenv("CLOUDSDK_CONFIG", gcloud)
	t.Setenv(oauth.CredentialsEnv, "")

	account, err := cacheAccount(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, oauth.MetadataCacheAccount, account)

	adc := filepath.Join(gcloud, "application_default_credentials.json")
	require.NoError(t, os.WriteFile(adc, []byte(`{"type":"authorized_user","refresh_token":"alice"}`), 0o600))
	alice, err := cacheAccount(&config.Config{})
	require.NoError(t, err)
	assert.Equal(t, oauth.CacheAccount(adc), alice)

	require.NoError(t, os.WriteFile(adc, []byte(`{"type":"authorized_user","refresh_token":"bob"}`), 0o600))
	bob, err := cacheAccount(&config.Config{})
	require.NoError(t, err)
	assert.NotEqual(t, alice, bob, "another gcloud login gets its own tokens")

	key := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(key, []byte(`{"type":"service_account"}`), 0o600))
	explicit, err := cacheAccount(&config.Config{Credentials: key})
	require.NoError(t, err)
	assert.Equal(t, oauth.CacheAccount(key), explicit)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		" error ": "ERROR",
		"warn":    "WARN",
		"bogus":   "WARN",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parseLevel(in).String())
		})
	}
}
