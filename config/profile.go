package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a named set of settings in the profile file.
type Profile struct {
	Name        string  `yaml:"name"`
	Default     bool    `yaml:"default,omitempty"`
	Credentials string  `yaml:"credentials,omitempty"`
	Project     string  `yaml:"project,omitempty"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	TokenCache  string  `yaml:"token_cache,omitempty"`
	Scheme      string  `yaml:"scheme,omitempty"`
	Duration    string  `yaml:"duration,omitempty"`
	Parallelism int     `yaml:"parallelism,omitempty"`
	RateLimit   float64 `yaml:"rate_limit,omitempty"`
	LogLevel    string  `yaml:"log_level,omitempty"`
	LogFormat   string  `yaml:"log_format,omitempty"`
}

// settings returns the profile's non-empty values keyed like Config.
func (p *Profile) settings() map[string]any {
	out := map[string]any{}
	set := func(section, key string, value any, ok bool) {
		if !ok {
			return
		}
		if section == "" {
			out[key] = value
			return
		}
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			out[section] = m
		}
		m[key] = value
	}

	set("", "credentials", p.Credentials, p.Credentials != "")
	set("", "project", p.Project, p.Project != "")
	set("", "endpoint", p.Endpoint, p.Endpoint != "")
	set("", "token_cache", p.TokenCache, p.TokenCache != "")
	set("signurl", "scheme", p.Scheme, p.Scheme != "")
	set("signurl", "duration", p.Duration, p.Duration != "")
	set("transfer", "parallelism", p.Parallelism, p.Parallelism != 0)
	set("transfer", "rate_limit", p.RateLimit, p.RateLimit != 0)
	set("log", "level", p.LogLevel, p.LogLevel != "")
	set("log", "format", p.LogFormat, p.LogFormat != "")
	return out
}

// ConfigFile holds the full profile file.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the profile marked default, or the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. The first profile added becomes the default.
func (c *ConfigFile) AddProfile(p Profile) error {
	if p.Name == "" {
		return ErrProfileName
	}
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	if len(c.Profiles) == 0 {
		p.Default = true
	}
	c.Profiles = append(c.Profiles, p)
	if p.Default {
		return c.SetDefault(p.Name)
	}
	return nil
}

// UpdateProfile replaces an existing profile.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// RemoveProfile removes a profile by name. If it was the default, the first
// remaining profile takes over.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			wasDefault := c.Profiles[i].Default
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			if wasDefault && len(c.Profiles) > 0 {
				c.Profiles[0].Default = true
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault marks name as the default and clears the flag elsewhere.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// ProfileNames returns a list of all profile names.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, len(c.Profiles))
	for i := range c.Profiles {
		names[i] = c.Profiles[i].Name
	}
	return names
}

// Save writes the file to path, creating the parent directory.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the profile file at path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadOrEmpty loads path, returning an empty file if it does not exist.
func LoadOrEmpty(path string) (*ConfigFile, error) {
	cfg, err := LoadConfigFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ConfigFile{}, nil
	}
	return cfg, err
}
