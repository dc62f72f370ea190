package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 60 * time.Second

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Sender sends a Request and returns the buffered Response.
type Sender interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// HTTPSender is a Sender backed by an *http.Client.
type HTTPSender struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures an HTTPSender.
type Option func(*HTTPSender)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSender) {
		s.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *HTTPSender) {
		s.httpClient.Timeout = timeout
	}
}

// WithRateLimiter paces outgoing requests. A nil limiter disables pacing.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(s *HTTPSender) {
		s.limiter = limiter
	}
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSender) {
		s.logger = logger
	}
}

// New creates an HTTPSender.
func New(opts ...Option) *HTTPSender {
	s := &HTTPSender{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send executes req. The request body is buffered before the call is made and
// the response body is read to completion before Send returns.
func (s *HTTPSender) Send(ctx context.Context, req *Request) (*Response, error) {
	if !supportedMethods[req.Method] {
		return nil, &UnsupportedMethodError{Method: req.Method}
	}

	if err := validateHeader(req.Header); err != nil {
		return nil, &TransportError{Op: "validate header", Method: req.Method, URL: req.URL, Err: err}
	}

	body, err := ReadBody(req.Body, contentLength(req.Header))
	if err != nil {
		return nil, &TransportError{Op: "read request body", Method: req.Method, URL: req.URL, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "create request", Method: req.Method, URL: req.URL, Err: err}
	}
	for name, values := range req.Header {
		if http.CanonicalHeaderKey(name) == "Content-Length" {
			continue
		}
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpReq.ContentLength = int64(len(body))

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Op: "rate limit", Method: req.Method, URL: req.URL, Err: err}
		}
	}

	start := time.Now()
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "do request", Method: req.Method, URL: req.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := ReadBody(resp.Body, resp.ContentLength)
	if err != nil {
		return nil, &TransportError{Op: "read response", Method: req.Method, URL: req.URL, Err: err}
	}

	s.logger.Debug("http request",
		"method", req.Method,
		"url", redactQuery(req.URL),
		"status", resp.StatusCode,
		"bytes", len(respBody),
		"elapsed", time.Since(start),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// ReadBody reads r to EOF into a single buffer. size is a capacity hint; when
// it is positive the stream must deliver at least that many bytes, otherwise
// io.ErrUnexpectedEOF is returned. A nil reader yields an empty body.
func ReadBody(r io.Reader, size int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	if size < 0 {
		size = 0
	}

	var buf bytes.Buffer
	buf.Grow(int(size))

	n, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	if n < size {
		return nil, fmt.Errorf("read %d of %d bytes: %w", n, size, io.ErrUnexpectedEOF)
	}

	return buf.Bytes(), nil
}

func contentLength(h http.Header) int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func validateHeader(h http.Header) error {
	for name, values := range h {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("invalid header name %q", name)
		}
		for _, v := range values {
			if !httpguts.ValidHeaderFieldValue(v) {
				return fmt.Errorf("invalid value for header %q", name)
			}
		}
	}
	return nil
}

// redactQuery drops the query string so signed parameters never reach the log.
func redactQuery(raw string) string {
	base, _, _ := strings.Cut(raw, "?")
	return base
}
