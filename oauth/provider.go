package oauth

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/sagarc03/gsutil/transport"
)

// DefaultExpiryMargin is subtracted from a token's reported lifetime so that
// a token is refreshed before the server stops accepting it.
const DefaultExpiryMargin = time.Minute

// PendingRequest describes the HTTP exchange that mints a token for the
// scope set identified by ScopeHash.
type PendingRequest struct {
	Request   *transport.Request
	ScopeHash string
}

// Provider obtains tokens for scope sets.
type Provider interface {
	// Token returns a cached, unexpired token for scopes, or a PendingRequest
	// that must be executed and passed to ParseTokenResponse. Exactly one of
	// the two results is non-nil when err is nil.
	Token(ctx context.Context, scopes []string) (*oauth2.Token, *PendingRequest, error)
	// ParseTokenResponse validates the response to a PendingRequest, caches
	// the token under scopeHash and returns it.
	ParseTokenResponse(ctx context.Context, scopeHash string, resp *transport.Response) (*oauth2.Token, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	cache        Cache
	now          func() time.Time
	expiryMargin time.Duration
	tokenURL     string
	metadataHost string
	onGCE        func() bool
	logger       *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		now:          time.Now,
		expiryMargin: DefaultExpiryMargin,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil {
		o.cache = NewMemoryCache()
	}
	return o
}

// WithCache sets the token cache. The default is a fresh MemoryCache.
func WithCache(cache Cache) Option {
	return func(o *options) {
		o.cache = cache
	}
}

// WithClock overrides the time source used for expiry and JWT timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithExpiryMargin overrides DefaultExpiryMargin.
func WithExpiryMargin(margin time.Duration) Option {
	return func(o *options) {
		o.expiryMargin = margin
	}
}

// WithTokenURL overrides the token endpoint. Service accounts default to the
// token_uri in their key file and authorized users to Google's endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(o *options) {
		o.tokenURL = tokenURL
	}
}

// WithMetadataHost overrides the metadata server host used by Metadata.
func WithMetadataHost(host string) Option {
	return func(o *options) {
		o.metadataHost = host
	}
}

// WithGCEProbe overrides the check Default uses to detect the metadata server.
func WithGCEProbe(probe func() bool) Option {
	return func(o *options) {
		o.onGCE = probe
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// tokenStore implements the cache lookup and response parsing shared by
// every provider variant.
type tokenStore struct {
	options
}

// lookup normalizes scopes and returns their hash plus any valid cached token.
func (s *tokenStore) lookup(ctx context.Context, scopes []string) ([]string, string, *oauth2.Token, error) {
	normalized := normalizeScopes(scopes)
	if len(normalized) == 0 {
		return nil, "", nil, ErrNoScopes
	}

	hash := ScopeHash(normalized)
	if tok, ok := s.cache.Get(ctx, hash); ok && s.valid(tok) {
		return normalized, hash, tok, nil
	}
	return normalized, hash, nil, nil
}

func (s *tokenStore) valid(tok *oauth2.Token) bool {
	return tok != nil && tok.AccessToken != "" && s.now().Before(tok.Expiry)
}

// tokenResponse is the JSON document returned by OAuth2 token endpoints and
// the metadata server.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        *int64 `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ParseTokenResponse implements Provider for every variant.
func (s *tokenStore) ParseTokenResponse(ctx context.Context, scopeHash string, resp *transport.Response) (*oauth2.Token, error) {
	if resp == nil {
		return nil, &TokenParseError{Reason: "no response"}
	}

	var body tokenResponse
	decodeErr := json.Unmarshal(resp.Body, &body)

	if !resp.IsSuccess() {
		return nil, &TokenParseError{
			StatusCode:  resp.StatusCode,
			Reason:      "token endpoint returned non-success status",
			Code:        body.Error,
			Description: body.ErrorDescription,
		}
	}

	if decodeErr != nil {
		return nil, &TokenParseError{StatusCode: resp.StatusCode, Reason: "malformed json", Err: decodeErr}
	}
	if body.AccessToken == "" {
		return nil, &TokenParseError{StatusCode: resp.StatusCode, Reason: "missing access_token"}
	}
	if body.ExpiresIn == nil {
		return nil, &TokenParseError{StatusCode: resp.StatusCode, Reason: "missing expires_in"}
	}

	tokenType := body.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	lifetime := time.Duration(*body.ExpiresIn)*time.Second - s.expiryMargin
	if lifetime < 0 {
		lifetime = 0
	}

	tok := &oauth2.Token{
		AccessToken: body.AccessToken,
		TokenType:   tokenType,
		Expiry:      s.now().Add(lifetime),
	}

	if err := s.cache.Put(ctx, scopeHash, tok); err != nil {
		s.logger.Warn("failed to cache token", "err", err)
	}

	return tok, nil
}
