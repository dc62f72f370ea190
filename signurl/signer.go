package signurl

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/oauth"
)

const (
	// Algorithm is the V4 signing algorithm identifier.
	Algorithm = "GOOG4-RSA-SHA256"
	// MaxDuration is the longest validity the V4 scheme accepts.
	MaxDuration = 7 * 24 * time.Hour
	// DefaultEndpoint is the host signed URLs point at.
	DefaultEndpoint = "https://storage.googleapis.com"

	DateTimeFormat = "20060102T150405Z"
	DateFormat     = "20060102"

	credentialScopeSuffix = "auto/storage/goog4_request"
	unsignedPayload       = "UNSIGNED-PAYLOAD"
	resumableHeader       = "x-goog-resumable"
)

// Options describes the request a URL is signed for.
type Options struct {
	Method      Method
	Duration    time.Duration
	ContentType string
	Headers     http.Header
	Scheme      Scheme
	// IssuedAt overrides the signer's clock.
	IssuedAt time.Time
}

// Result is a signed URL and the strings that produced it.
type Result struct {
	URL              string
	Method           string
	Expires          time.Time
	CanonicalRequest string
	StringToSign     string
	Signature        string
}

// Signer signs URLs with a service account's private key.
type Signer struct {
	email    string
	key      *rsa.PrivateKey
	now      func() time.Time
	endpoint *url.URL
}

// Option configures a Signer.
type Option func(*Signer)

// WithClock sets the time source used when Options.IssuedAt is zero.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEndpoint sets the scheme and host signed URLs point at.
func WithEndpoint(endpoint *url.URL) Option {
	return func(s *Signer) {
		if endpoint != nil && endpoint.Host != "" {
			s.endpoint = endpoint
		}
	}
}

// NewSigner creates a Signer from a service account key.
func NewSigner(key *oauth.ServiceAccountKey, opts ...Option) (*Signer, error) {
	if key == nil {
		return nil, &SigningError{Reason: "service account key is required"}
	}
	if key.ClientEmail == "" {
		return nil, &SigningError{Reason: "service account key has no client_email"}
	}

	rsaKey, err := key.RSAKey()
	if err != nil {
		return nil, &SigningError{Reason: "load private key", Err: err}
	}

	endpoint, _ := url.Parse(DefaultEndpoint)
	s := &Signer{
		email:    key.ClientEmail,
		key:      rsaKey,
		now:      time.Now,
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sign produces a URL granting opts.Method on id for opts.Duration.
func (s *Signer) Sign(id gsutil.ObjectID, opts Options) (*Result, error) {
	if id.Object == "" {
		return nil, &SigningError{Reason: "must have a valid object name", Err: gsutil.NewValidationError("url", id.String(), "object name required")}
	}
	if opts.Duration <= 0 {
		return nil, &SigningError{Reason: "duration must be positive"}
	}
	if opts.Duration%time.Second != 0 {
		return nil, &SigningError{Reason: fmt.Sprintf("duration %s is not a whole number of seconds", opts.Duration)}
	}

	scheme := opts.Scheme
	if scheme == "" {
		scheme = SchemeV4
	}
	if scheme == SchemeV4 && opts.Duration > MaxDuration {
		return nil, &SigningError{Reason: fmt.Sprintf("duration %s exceeds the %s limit", opts.Duration, MaxDuration)}
	}

	method := opts.Method
	if method == "" {
		method = MethodGet
	}

	headers, err := canonicalHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}
	if opts.ContentType != "" {
		headers["content-type"] = strings.TrimSpace(opts.ContentType)
	}
	if method == MethodResumable {
		method = MethodPost
		headers[resumableHeader] = "start"
	}

	issued := opts.IssuedAt
	if issued.IsZero() {
		issued = s.now()
	}
	issued = issued.UTC().Truncate(time.Second)

	req := request{
		method:   string(method),
		path:     "/" + uriEncode(id.Bucket, false) + "/" + uriEncode(id.Object, true),
		headers:  headers,
		issued:   issued,
		duration: opts.Duration,
	}

	switch scheme {
	case SchemeV4:
		return s.signV4(req)
	case SchemeV2:
		return s.signV2(req)
	default:
		return nil, &SigningError{Reason: fmt.Sprintf("unknown scheme %q", scheme)}
	}
}

type request struct {
	method   string
	path     string
	headers  map[string]string
	issued   time.Time
	duration time.Duration
}

func (s *Signer) signV4(req request) (*Result, error) {
	req.headers["host"] = s.endpoint.Host

	names := sortedKeys(req.headers)
	signedHeaders := strings.Join(names, ";")

	credentialScope := req.issued.Format(DateFormat) + "/" + credentialScopeSuffix
	query := map[string]string{
		"X-Goog-Algorithm":     Algorithm,
		"X-Goog-Credential":    s.email + "/" + credentialScope,
		"X-Goog-Date":          req.issued.Format(DateTimeFormat),
		"X-Goog-Expires":       strconv.FormatInt(int64(req.duration/time.Second), 10),
		"X-Goog-SignedHeaders": signedHeaders,
	}
	canonicalQuery := encodeQuery(query)

	var hdr strings.Builder
	for _, name := range names {
		hdr.WriteString(name)
		hdr.WriteString(":")
		hdr.WriteString(req.headers[name])
		hdr.WriteString("\n")
	}

	canonicalRequest := strings.Join([]string{
		req.method,
		req.path,
		canonicalQuery,
		hdr.String(),
		signedHeaders,
		unsignedPayload,
	}, "\n")

	digest := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		Algorithm,
		req.issued.Format(DateTimeFormat),
		credentialScope,
		hex.EncodeToString(digest[:]),
	}, "\n")

	sig, err := s.sign(stringToSign)
	if err != nil {
		return nil, err
	}
	signature := hex.EncodeToString(sig)

	return &Result{
		URL:              s.baseURL(req.path) + "?" + canonicalQuery + "&X-Goog-Signature=" + signature,
		Method:           req.method,
		Expires:          req.issued.Add(req.duration),
		CanonicalRequest: canonicalRequest,
		StringToSign:     stringToSign,
		Signature:        signature,
	}, nil
}

func (s *Signer) signV2(req request) (*Result, error) {
	expires := req.issued.Add(req.duration)
	expiresEpoch := strconv.FormatInt(expires.Unix(), 10)

	var ext strings.Builder
	for _, name := range sortedKeys(req.headers) {
		if !strings.HasPrefix(name, "x-goog-") {
			continue
		}
		ext.WriteString(name)
		ext.WriteString(":")
		ext.WriteString(req.headers[name])
		ext.WriteString("\n")
	}

	stringToSign := req.method + "\n" +
		"\n" +
		req.headers["content-type"] + "\n" +
		expiresEpoch + "\n" +
		ext.String() +
		req.path

	sig, err := s.sign(stringToSign)
	if err != nil {
		return nil, err
	}
	signature := base64.StdEncoding.EncodeToString(sig)

	query := encodeQuery(map[string]string{
		"GoogleAccessId": s.email,
		"Expires":        expiresEpoch,
		"Signature":      signature,
	})

	return &Result{
		URL:              s.baseURL(req.path) + "?" + query,
		Method:           req.method,
		Expires:          expires,
		CanonicalRequest: stringToSign,
		StringToSign:     stringToSign,
		Signature:        signature,
	}, nil
}

func (s *Signer) sign(stringToSign string) ([]byte, error) {
	sig, err := jwt.SigningMethodRS256.Sign(stringToSign, s.key)
	if err != nil {
		return nil, &SigningError{Reason: "sign string", Err: err}
	}
	return sig, nil
}

func (s *Signer) baseURL(path string) string {
	return s.endpoint.Scheme + "://" + s.endpoint.Host + path
}

// canonicalHeaders lower-cases names, trims values, collapses inner
// whitespace and joins repeated values with ",".
func canonicalHeaders(h http.Header) (map[string]string, error) {
	out := make(map[string]string, len(h)+3)
	for name, values := range h {
		lname := strings.ToLower(strings.TrimSpace(name))
		if lname == "" {
			return nil, &SigningError{Reason: "header name is empty"}
		}
		cleaned := make([]string, 0, len(values))
		for _, v := range values {
			cleaned = append(cleaned, strings.Join(strings.Fields(v), " "))
		}
		if prev, ok := out[lname]; ok {
			cleaned = append([]string{prev}, cleaned...)
		}
		out[lname] = strings.Join(cleaned, ",")
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeQuery encodes params sorted by name with RFC 3986 escaping.
func encodeQuery(params map[string]string) string {
	var b strings.Builder
	for i, k := range sortedKeys(params) {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(uriEncode(k, false))
		b.WriteByte('=')
		b.WriteString(uriEncode(params[k], false))
	}
	return b.String()
}

// uriEncode percent-encodes everything outside the RFC 3986 unreserved set.
// With keepSlash, "/" is left as a path separator.
func uriEncode(s string, keepSlash bool) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		case c == '/' && keepSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}
