package oauth

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"github.com/sagarc03/gsutil/transport"
)

const (
	metadataHostEnv     = "GCE_METADATA_HOST"
	defaultMetadataHost = "metadata.google.internal"
	metadataTokenPath   = "/computeMetadata/v1/instance/service-accounts/default/token"
)

// Metadata mints tokens for the default service account of the compute
// instance the process runs on.
type Metadata struct {
	tokenStore
	host string
}

// NewMetadata creates a Metadata provider. The host defaults to
// $GCE_METADATA_HOST, then metadata.google.internal.
func NewMetadata(opts ...Option) *Metadata {
	o := newOptions(opts)
	host := o.metadataHost
	if host == "" {
		host = os.Getenv(metadataHostEnv)
	}
	if host == "" {
		host = defaultMetadataHost
	}
	return &Metadata{
		tokenStore: tokenStore{options: o},
		host:       host,
	}
}

// Token implements Provider.
func (p *Metadata) Token(ctx context.Context, scopes []string) (*oauth2.Token, *PendingRequest, error) {
	normalized, hash, tok, err := p.lookup(ctx, scopes)
	if err != nil {
		return nil, nil, err
	}
	if tok != nil {
		return tok, nil, nil
	}

	u := url.URL{
		Scheme:   "http",
		Host:     p.host,
		Path:     metadataTokenPath,
		RawQuery: url.Values{"scopes": {strings.Join(normalized, ",")}}.Encode(),
	}
	req := transport.NewRequest(http.MethodGet, u.String(), nil)
	req.Header.Set("Metadata-Flavor", "Google")

	return nil, &PendingRequest{Request: req, ScopeHash: hash}, nil
}
