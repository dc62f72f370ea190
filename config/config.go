package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/gsutil/signurl"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GSUTIL"

// DisabledTokenCache turns the persistent token cache off.
const DisabledTokenCache = "none"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the resolved configuration for one invocation.
type Config struct {
	// Profile is the name of the profile that was applied, if any.
	Profile string `mapstructure:"-"`
	// File is the profile file that was read, if any.
	File string `mapstructure:"-"`

	Credentials string         `mapstructure:"credentials"`
	Project     string         `mapstructure:"project"`
	Endpoint    string         `mapstructure:"endpoint" validate:"required,url"`
	TokenCache  string         `mapstructure:"token_cache"`
	Timeout     time.Duration  `mapstructure:"timeout" validate:"min=0"`
	SignURL     SignURLConfig  `mapstructure:"signurl"`
	Transfer    TransferConfig `mapstructure:"transfer"`
	Log         LogConfig      `mapstructure:"log"`
}

// SignURLConfig holds signurl defaults.
type SignURLConfig struct {
	Scheme   string        `mapstructure:"scheme" validate:"required,oneof=v4 v2"`
	Duration time.Duration `mapstructure:"duration" validate:"min=1s"`
}

// TransferConfig bounds concurrent and per-second API calls.
type TransferConfig struct {
	Parallelism int     `mapstructure:"parallelism" validate:"min=1,max=64"`
	RateLimit   float64 `mapstructure:"rate_limit" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// TokenCacheEnabled reports whether tokens should persist across runs.
func (c *Config) TokenCacheEnabled() bool {
	return c.TokenCache != "" && c.TokenCache != DisabledTokenCache
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"token-cache": "token_cache",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"parallel":    "transfer.parallelism",
	"rate-limit":  "transfer.rate_limit",
	"duration":    "signurl.duration",
	"scheme":      "signurl.scheme",
}

// bindFlags binds explicitly set CLI flags to viper keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("credentials", "")
	v.SetDefault("project", "")
	v.SetDefault("endpoint", "https://storage.googleapis.com")
	v.SetDefault("token_cache", DefaultTokenCachePath())
	v.SetDefault("timeout", 60*time.Second)

	v.SetDefault("signurl.scheme", string(signurl.SchemeV4))
	v.SetDefault("signurl.duration", "1h")

	v.SetDefault("transfer.parallelism", 8)
	v.SetDefault("transfer.rate_limit", 0)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Options selects the profile file and profile for Load.
type Options struct {
	// File is the profile file path. Empty means GSUTIL_CONFIG, then
	// DefaultConfigPath. An explicit path must exist.
	File string
	// Profile names the profile to apply. Empty means GSUTIL_PROFILE, then the
	// file's default profile.
	Profile string
	// Flags are bound when non-nil. Only flags that were set take effect.
	Flags *pflag.FlagSet
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > profile > defaults
func Load(opts Options) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Apply the selected profile
	path, explicit := opts.File, opts.File != ""
	if !explicit {
		if env := os.Getenv(EnvPrefix + "_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultConfigPath()
		}
	}
	profileName := opts.Profile
	if profileName == "" {
		profileName = os.Getenv(EnvPrefix + "_PROFILE")
	}

	profile, file, err := selectProfile(path, explicit, profileName)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		if err := v.MergeConfigMap(profile.settings()); err != nil {
			return nil, fmt.Errorf("apply profile %s: %w", profile.Name, err)
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("credentials", EnvPrefix+"_CREDENTIALS", "GOOGLE_APPLICATION_CREDENTIALS")

	// 4. Bind flags (if provided)
	if opts.Flags != nil {
		bindFlags(v, opts.Flags)
	}

	// signurl.duration only takes the s, m, h or d syntax.
	if _, err := signurl.ParseDuration(v.GetString("signurl.duration")); err != nil {
		return nil, fmt.Errorf("signurl duration: %w", err)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Credentials = ExpandHome(cfg.Credentials)
	if cfg.TokenCache != DisabledTokenCache {
		cfg.TokenCache = ExpandHome(cfg.TokenCache)
	}
	cfg.SignURL.Scheme = strings.ToLower(cfg.SignURL.Scheme)
	if profile != nil {
		cfg.Profile = profile.Name
	}
	if file != nil {
		cfg.File = path
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// selectProfile loads path and picks the named or default profile. A missing
// file is only an error when it was requested explicitly.
func selectProfile(path string, explicit bool, name string) (*Profile, *ConfigFile, error) {
	if path == "" {
		return nil, nil, nil
	}

	file, err := LoadConfigFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			if name != "" {
				return nil, nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
			}
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if len(file.Profiles) == 0 && name == "" {
		return nil, file, nil
	}

	profile, err := file.GetProfile(name)
	if err != nil {
		return nil, nil, err
	}
	return profile, file, nil
}

// durationHook decodes strings into time.Duration, accepting signed URL
// duration syntax before falling back to time.ParseDuration. Load checks
// signurl.duration separately, so the fallback only reaches timeout.
func durationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != durationType {
			return data, nil
		}
		s := data.(string)
		if d, err := signurl.ParseDuration(s); err == nil {
			return d, nil
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return d, nil
	}
}

// DefaultConfigPath returns ~/.config/gsutil/config.yaml, or "" when no home
// directory is known.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gsutil", "config.yaml")
}

// DefaultTokenCachePath returns the sqlite token cache location under the
// user cache directory, or "" when none is known.
func DefaultTokenCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gsutil", "tokens.db")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
