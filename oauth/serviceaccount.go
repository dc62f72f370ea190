package oauth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sagarc03/gsutil/transport"
)

// Credential file types.
const (
	TypeServiceAccount = "service_account"
	TypeAuthorizedUser = "authorized_user"
)

const (
	jwtBearerGrant    = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionLifetime = time.Hour
)

// ServiceAccountKey is the JSON key document issued for a service account.
type ServiceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`
}

// ParseServiceAccountKey decodes and checks a service account key document.
// A missing token_uri defaults to Google's token endpoint.
func ParseServiceAccountKey(data []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	if key.Type != "" && key.Type != TypeServiceAccount {
		return nil, fmt.Errorf("parse service account key: unexpected type %q", key.Type)
	}
	if key.ClientEmail == "" {
		return nil, fmt.Errorf("parse service account key: missing client_email")
	}
	if key.PrivateKey == "" {
		return nil, fmt.Errorf("parse service account key: missing private_key")
	}
	if key.TokenURI == "" {
		key.TokenURI = google.Endpoint.TokenURL
	}

	return &key, nil
}

// LoadServiceAccountKey reads a service account key file.
func LoadServiceAccountKey(path string) (*ServiceAccountKey, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided credentials file
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	return ParseServiceAccountKey(data)
}

// RSAKey parses the PEM-encoded private key (PKCS#1 or PKCS#8).
func (k *ServiceAccountKey) RSAKey() (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(k.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}

// ServiceAccount mints tokens with the JWT bearer grant.
type ServiceAccount struct {
	tokenStore
	key      *ServiceAccountKey
	rsaKey   *rsa.PrivateKey
	tokenURL string
}

// NewServiceAccount creates a ServiceAccount provider for key.
func NewServiceAccount(key *ServiceAccountKey, opts ...Option) (*ServiceAccount, error) {
	if key == nil {
		return nil, fmt.Errorf("service account key is required")
	}

	rsaKey, err := key.RSAKey()
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	tokenURL := key.TokenURI
	if o.tokenURL != "" {
		tokenURL = o.tokenURL
	}

	return &ServiceAccount{
		tokenStore: tokenStore{options: o},
		key:        key,
		rsaKey:     rsaKey,
		tokenURL:   tokenURL,
	}, nil
}

// Key returns the service account key this provider signs with.
func (p *ServiceAccount) Key() *ServiceAccountKey {
	return p.key
}

// Token implements Provider.
func (p *ServiceAccount) Token(ctx context.Context, scopes []string) (*oauth2.Token, *PendingRequest, error) {
	normalized, hash, tok, err := p.lookup(ctx, scopes)
	if err != nil {
		return nil, nil, err
	}
	if tok != nil {
		return tok, nil, nil
	}

	assertion, err := p.assertion(normalized)
	if err != nil {
		return nil, nil, &AuthError{Op: "sign jwt assertion", Err: err}
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req := transport.NewBytesRequest(http.MethodPost, p.tokenURL, []byte(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p.logger.Debug("minting service account token", "account", p.key.ClientEmail, "scopes", len(normalized))

	return nil, &PendingRequest{Request: req, ScopeHash: hash}, nil
}

func (p *ServiceAccount) assertion(scopes []string) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"iss":   p.key.ClientEmail,
		"scope": strings.Join(scopes, " "),
		"aud":   p.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if p.key.PrivateKeyID != "" {
		tok.Header["kid"] = p.key.PrivateKeyID
	}

	return tok.SignedString(p.rsaKey)
}
