package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/sagarc03/gsutil/transport"
)

// AuthorizedUserCredentials is the gcloud application default credentials
// document for a user account.
type AuthorizedUserCredentials struct {
	Type           string `json:"type"`
	ClientID       string `json:"client_id"`
	ClientSecret   string `json:"client_secret"`
	RefreshToken   string `json:"refresh_token"`
	QuotaProjectID string `json:"quota_project_id"`
}

// ParseAuthorizedUser decodes and checks an authorized_user document.
func ParseAuthorizedUser(data []byte) (*AuthorizedUserCredentials, error) {
	var creds AuthorizedUserCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse authorized user credentials: %w", err)
	}
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return nil, fmt.Errorf("parse authorized user credentials: client_id, client_secret and refresh_token are required")
	}
	return &creds, nil
}

// AuthorizedUser mints tokens with the refresh token grant.
// The requested scopes are fixed at consent time and are only used for cache
// identity.
type AuthorizedUser struct {
	tokenStore
	creds    *AuthorizedUserCredentials
	tokenURL string
}

// NewAuthorizedUser creates an AuthorizedUser provider.
func NewAuthorizedUser(creds *AuthorizedUserCredentials, opts ...Option) *AuthorizedUser {
	o := newOptions(opts)
	tokenURL := google.Endpoint.TokenURL
	if o.tokenURL != "" {
		tokenURL = o.tokenURL
	}
	return &AuthorizedUser{
		tokenStore: tokenStore{options: o},
		creds:      creds,
		tokenURL:   tokenURL,
	}
}

// Token implements Provider.
func (p *AuthorizedUser) Token(ctx context.Context, scopes []string) (*oauth2.Token, *PendingRequest, error) {
	_, hash, tok, err := p.lookup(ctx, scopes)
	if err != nil {
		return nil, nil, err
	}
	if tok != nil {
		return tok, nil, nil
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {p.creds.ClientID},
		"client_secret": {p.creds.ClientSecret},
		"refresh_token": {p.creds.RefreshToken},
	}
	req := transport.NewBytesRequest(http.MethodPost, p.tokenURL, []byte(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return nil, &PendingRequest{Request: req, ScopeHash: hash}, nil
}
