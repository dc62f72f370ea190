package client

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/oauth2"

	"github.com/sagarc03/gsutil/oauth"
	"github.com/sagarc03/gsutil/transport"
)

// Client pairs a transport with a token provider.
type Client struct {
	sender   transport.Sender
	provider oauth.Provider
	scopes   []string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithScopes overrides the default full-control scope.
func WithScopes(scopes ...string) Option {
	return func(c *Client) {
		c.scopes = scopes
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client.
func New(sender transport.Sender, provider oauth.Provider, opts ...Option) *Client {
	c := &Client{
		sender:   sender,
		provider: provider,
		scopes:   []string{oauth.ScopeFullControl},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute authenticates req, sends it and decodes the response with decode.
func Execute[T any](ctx context.Context, c *Client, req *transport.Request, decode Decoder[T]) (T, error) {
	var zero T

	resp, err := c.Do(ctx, req)
	if err != nil {
		return zero, err
	}

	if !resp.IsSuccess() {
		return zero, ParseAPIError(resp)
	}

	v, err := decode(resp)
	if err != nil {
		return zero, &APIError{
			StatusCode: resp.StatusCode,
			Message:    err.Error(),
			Body:       string(resp.Body),
		}
	}
	return v, nil
}

// Do authenticates and sends req without interpreting the status code.
func (c *Client) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	if err := authorize(req, tok); err != nil {
		return nil, err
	}

	return c.sender.Send(ctx, req)
}

// token returns a cached token or mints one with an unauthenticated round trip.
func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	tok, pending, err := c.provider.Token(ctx, c.scopes)
	if err != nil {
		return nil, &oauth.AuthError{Op: "acquire token", Err: err}
	}
	if tok != nil {
		return tok, nil
	}

	c.logger.DebugContext(ctx, "token cache miss, minting token", "url", pending.Request.URL)

	resp, err := c.sender.Send(ctx, pending.Request)
	if err != nil {
		return nil, &oauth.AuthError{Op: "mint token", Err: err}
	}

	tok, err = c.provider.ParseTokenResponse(ctx, pending.ScopeHash, resp)
	if err != nil {
		return nil, &oauth.AuthError{Op: "mint token", Err: err}
	}
	return tok, nil
}

func authorize(req *transport.Request, tok *oauth2.Token) error {
	value := tok.Type() + " " + tok.AccessToken
	if !httpguts.ValidHeaderFieldValue(value) {
		return &oauth.AuthError{Op: "attach token", Err: fmt.Errorf("token is not a valid header value")}
	}
	if req.Header == nil {
		req.Header = make(map[string][]string)
	}
	req.Header.Set("Authorization", value)
	return nil
}
