package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/gsutil/config"
)

// isolate points HOME at a temp dir and clears variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")
	for _, key := range []string{
		"GSUTIL_CONFIG", "GSUTIL_PROFILE", "GSUTIL_CREDENTIALS", "GSUTIL_PROJECT",
		"GSUTIL_ENDPOINT", "GSUTIL_LOG_LEVEL", "GSUTIL_SIGNURL_DURATION",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "https://storage.googleapis.com", cfg.Endpoint)
	assert.Equal(t, filepath.Join(home, ".cache", "gsutil", "tokens.db"), cfg.TokenCache)
	assert.True(t, cfg.TokenCacheEnabled())
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, "v4", cfg.SignURL.Scheme)
	assert.Equal(t, time.Hour, cfg.SignURL.Duration)
	assert.Equal(t, 8, cfg.Transfer.Parallelism)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Profile)
	assert.Empty(t, cfg.File)
}

func TestLoad_DefaultProfile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "gsutil", "config.yaml"), `
profiles:
  - name: local
    endpoint: http://localhost:4443
    token_cache: none
  - name: work
    default: true
    credentials: ~/keys/work.json
    project: work-project
    duration: 1d
    scheme: V2
    parallelism: 4
    log_level: debug
`)

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "work", cfg.Profile)
	assert.Equal(t, filepath.Join(home, "keys", "work.json"), cfg.Credentials)
	assert.Equal(t, "work-project", cfg.Project)
	assert.Equal(t, 24*time.Hour, cfg.SignURL.Duration)
	assert.Equal(t, "v2", cfg.SignURL.Scheme)
	assert.Equal(t, 4, cfg.Transfer.Parallelism)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NotEmpty(t, cfg.File)

	cfg, err = config.Load(config.Options{Profile: "local"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4443", cfg.Endpoint)
	assert.False(t, cfg.TokenCacheEnabled())
}

func TestLoad_ProfileErrors(t *testing.T) {
	home := isolate(t)

	_, err := config.Load(config.Options{Profile: "missing"})
	assert.ErrorIs(t, err, config.ErrProfileNotFound)

	_, err = config.Load(config.Options{File: filepath.Join(home, "nope.yaml")})
	assert.Error(t, err, "an explicit file must exist")

	path := writeFile(t, filepath.Join(home, "bad.yaml"), "profiles: [")
	_, err = config.Load(config.Options{File: path})
	assert.ErrorContains(t, err, "parse config file")

	path = writeFile(t, filepath.Join(home, "one.yaml"), "profiles:\n  - name: a\n")
	_, err = config.Load(config.Options{File: path, Profile: "b"})
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	home := isolate(t)
	path := writeFile(t, filepath.Join(home, "cfg.yaml"), `
profiles:
  - name: p
    project: from-file
`)
	t.Setenv("GSUTIL_CONFIG", path)
	t.Setenv("GSUTIL_PROJECT", "from-env")
	t.Setenv("GSUTIL_SIGNURL_DURATION", "30m")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/keys/adc.json")

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, "p", cfg.Profile)
	assert.Equal(t, "from-env", cfg.Project)
	assert.Equal(t, 30*time.Minute, cfg.SignURL.Duration)
	assert.Equal(t, "/keys/adc.json", cfg.Credentials)

	t.Setenv("GSUTIL_CREDENTIALS", "/keys/explicit.json")
	cfg, err = config.Load(config.Options{})
	require.NoError(t, err)
	assert.Equal(t, "/keys/explicit.json", cfg.Credentials)
}

func TestLoad_FlagsOverride(t *testing.T) {
	isolate(t)
	t.Setenv("GSUTIL_PROJECT", "from-env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("project", "", "")
	flags.String("credentials", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--project", "from-flag", "--log-level", "error"}))

	cfg, err := config.Load(config.Options{Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Project)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Empty(t, cfg.Credentials, "unset flags do not override")
}

func TestLoad_SignURLFlags(t *testing.T) {
	isolate(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("duration", "1h", "")
	flags.String("scheme", "v4", "")
	flags.Int("parallel", 8, "")
	require.NoError(t, flags.Parse([]string{"--duration", "2d", "--scheme", "V2", "--parallel", "3"}))

	cfg, err := config.Load(config.Options{Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.SignURL.Duration)
	assert.Equal(t, "v2", cfg.SignURL.Scheme)
	assert.Equal(t, 3, cfg.Transfer.Parallelism)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantErr string
	}{
		{name: "log level", env: "GSUTIL_LOG_LEVEL", value: "loud", wantErr: "validate config"},
		{name: "endpoint", env: "GSUTIL_ENDPOINT", value: "not a url", wantErr: "validate config"},
		{name: "duration", env: "GSUTIL_SIGNURL_DURATION", value: "soon", wantErr: "invalid duration"},
		{name: "duration milliseconds", env: "GSUTIL_SIGNURL_DURATION", value: "1ms", wantErr: "invalid duration"},
		{name: "duration microseconds", env: "GSUTIL_SIGNURL_DURATION", value: "500us", wantErr: "invalid duration"},
		{name: "duration compound", env: "GSUTIL_SIGNURL_DURATION", value: "1h30m", wantErr: "invalid duration"},
		{name: "duration overflow", env: "GSUTIL_SIGNURL_DURATION", value: "213504d", wantErr: "invalid duration"},
		{name: "duration zero", env: "GSUTIL_SIGNURL_DURATION", value: "0", wantErr: "validate config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.value)
			_, err := config.Load(config.Options{})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)

	cfg := &config.Config{Project: "p"}
	got, err := config.FromContext(config.WithContext(context.Background(), cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
