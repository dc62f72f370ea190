package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cloud.google.com/go/compute/metadata"
)

// CredentialsEnv names the environment variable holding a credentials file path.
const CredentialsEnv = "GOOGLE_APPLICATION_CREDENTIALS"

const (
	cloudSDKConfigEnv  = "CLOUDSDK_CONFIG"
	wellKnownFileName  = "application_default_credentials.json"
	wellKnownConfigDir = "gcloud"
)

// LoadCredentials reads a credentials file and returns the provider matching
// its "type" field.
func LoadCredentials(path string, opts ...Option) (Provider, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided credentials file
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return ParseCredentials(data, opts...)
}

// ParseCredentials returns the provider matching the "type" field of a
// credentials document.
func ParseCredentials(data []byte, opts ...Option) (Provider, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	switch head.Type {
	case TypeServiceAccount:
		key, err := ParseServiceAccountKey(data)
		if err != nil {
			return nil, err
		}
		return NewServiceAccount(key, opts...)
	case TypeAuthorizedUser:
		creds, err := ParseAuthorizedUser(data)
		if err != nil {
			return nil, err
		}
		return NewAuthorizedUser(creds, opts...), nil
	default:
		return nil, fmt.Errorf("parse credentials file: unsupported credentials type %q", head.Type)
	}
}

// Default discovers the ambient credential source:
//  1. the file named by GOOGLE_APPLICATION_CREDENTIALS
//  2. the gcloud application default credentials file
//  3. the GCE metadata server
//
// ErrNoDefaultProvider is returned when none is available.
func Default(ctx context.Context, opts ...Option) (Provider, error) {
	o := newOptions(opts)

	path, err := DefaultCredentialsFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		o.logger.DebugContext(ctx, "using default credentials file", "path", path)
		return LoadCredentials(path, opts...)
	}

	onGCE := o.onGCE
	if onGCE == nil {
		onGCE = metadata.OnGCE
	}
	if onGCE() {
		o.logger.DebugContext(ctx, "using compute metadata credentials")
		return NewMetadata(opts...), nil
	}

	return nil, ErrNoDefaultProvider
}

// DefaultCredentialsFile returns the file Default loads: the one named by
// GOOGLE_APPLICATION_CREDENTIALS, else the gcloud file when it exists.
// It returns "" when Default would fall back to the metadata server.
func DefaultCredentialsFile() (string, error) {
	if path := os.Getenv(CredentialsEnv); path != "" {
		return path, nil
	}

	path := wellKnownFile()
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat credentials file: %w", err)
	}
	return path, nil
}

// MetadataCacheAccount keys cached tokens minted by the metadata server.
const MetadataCacheAccount = "compute-metadata"

// CacheAccount names the token cache account for the credentials file at
// path: its absolute path plus a digest of its contents. Rewriting the file,
// as another gcloud login does, yields a new account.
func CacheAccount(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided credentials file
	if err != nil {
		return path
	}
	sum := sha256.Sum256(data)
	return path + "#" + hex.EncodeToString(sum[:8])
}

func wellKnownFile() string {
	if dir := os.Getenv(cloudSDKConfigEnv); dir != "" {
		return filepath.Join(dir, wellKnownFileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", wellKnownConfigDir, wellKnownFileName)
}
