package gcs

import (
	"net/url"
	"strings"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/client"
)

// DefaultEndpoint is the object store API endpoint.
const DefaultEndpoint = "https://storage.googleapis.com"

// Service performs object store operations.
type Service struct {
	client   *client.Client
	endpoint string
}

// Option configures a Service.
type Option func(*Service)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(s *Service) {
		if endpoint != "" {
			s.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// NewService creates a Service.
func NewService(c *client.Client, opts ...Option) *Service {
	s := &Service{client: c, endpoint: DefaultEndpoint}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the API endpoint in use.
func (s *Service) Endpoint() string {
	return s.endpoint
}

func (s *Service) bucketURL(bucket string, query url.Values) string {
	u := s.endpoint + "/storage/v1/b/" + url.PathEscape(bucket) + "/o"
	return withQuery(u, query)
}

func (s *Service) objectURL(id gsutil.ObjectID, query url.Values) string {
	u := s.endpoint + "/storage/v1/b/" + url.PathEscape(id.Bucket) + "/o/" + url.PathEscape(id.Object)
	return withQuery(u, query)
}

func (s *Service) uploadURL(bucket string, query url.Values) string {
	u := s.endpoint + "/upload/storage/v1/b/" + url.PathEscape(bucket) + "/o"
	return withQuery(u, query)
}

func withQuery(u string, query url.Values) string {
	if len(query) == 0 {
		return u
	}
	return u + "?" + query.Encode()
}
