// Package gcstest provides an in-memory object store and token endpoint for
// tests.
package gcstest

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/googleapi"
	storage "google.golang.org/api/storage/v1"
)

const tokenPrefix = "test-token-"

type object struct {
	meta storage.Object
	data []byte
}

// Server is a fake object store. Storage routes require a bearer token
// previously issued by its token endpoint.
type Server struct {
	*httptest.Server

	t        testing.TB
	mu       sync.Mutex
	buckets  map[string]map[string]*object
	projects map[string][]string
	issued   map[string]bool

	mints      atomic.Int64
	apiCalls   atomic.Int64
	expiresIn  atomic.Int64
	generation atomic.Int64
	failToken  atomic.Int32
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:        t,
		buckets:  make(map[string]map[string]*object),
		projects: make(map[string][]string),
		issued:   make(map[string]bool),
	}
	s.expiresIn.Store(3600)
	s.generation.Store(1700000000000000)

	r := chi.NewRouter()
	r.Post("/token", s.handleToken)
	r.Get("/computeMetadata/v1/instance/service-accounts/default/token", s.handleMetadataToken)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/storage/v1/b", s.handleListBuckets)
		r.Get("/storage/v1/b/{bucket}/o", s.handleListObjects)
		r.Get("/storage/v1/b/{bucket}/o/*", s.handleGetObject)
		r.Delete("/storage/v1/b/{bucket}/o/*", s.handleDeleteObject)
		r.Patch("/storage/v1/b/{bucket}/o/*", s.handlePatchObject)
		r.Post("/upload/storage/v1/b/{bucket}/o", s.handleInsertObject)
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// TokenURL returns the URL of the OAuth2 token endpoint.
func (s *Server) TokenURL() string {
	return s.URL + "/token"
}

// Host returns host:port of the server, usable as a metadata host.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Mints returns how many tokens have been issued.
func (s *Server) Mints() int64 {
	return s.mints.Load()
}

// APICalls returns how many authenticated storage requests were served.
func (s *Server) APICalls() int64 {
	return s.apiCalls.Load()
}

// SetTokenLifetime sets expires_in for subsequently issued tokens.
func (s *Server) SetTokenLifetime(seconds int64) {
	s.expiresIn.Store(seconds)
}

// FailTokenRequests makes the token endpoint reject the next n requests.
func (s *Server) FailTokenRequests(n int) {
	s.failToken.Store(int32(n))
}

// AddBucket registers bucket under project.
func (s *Server) AddBucket(project, bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]*object)
	}
	s.projects[project] = append(s.projects[project], bucket)
}

// PutObject stores an object, creating the bucket if needed.
func (s *Server) PutObject(bucket, name string, data []byte, contentType string, metadata map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(bucket, name, data, storage.Object{ContentType: contentType, Metadata: metadata})
}

// Object returns a stored object's metadata and content.
func (s *Server) Object(bucket, name string) (*storage.Object, []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.buckets[bucket][name]
	if !ok {
		return nil, nil, false
	}
	meta := obj.meta
	return &meta, append([]byte(nil), obj.data...), true
}

func (s *Server) putLocked(bucket, name string, data []byte, meta storage.Object) *object {
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]*object)
	}

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339)
	sum := md5.Sum(data) //#nosec G401 -- md5 is the object store's content hash
	crc := crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli))
	crcBytes := []byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}

	meta.Kind = "storage#object"
	meta.Bucket = bucket
	meta.Name = name
	meta.Size = uint64(len(data))
	meta.Md5Hash = base64.StdEncoding.EncodeToString(sum[:])
	meta.Crc32c = base64.StdEncoding.EncodeToString(crcBytes)
	meta.Generation = s.generation.Add(1)
	meta.Metageneration = 1
	meta.Etag = fmt.Sprintf("C%d=", meta.Generation)
	meta.StorageClass = "STANDARD"
	meta.TimeCreated = now
	meta.Updated = now
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}

	obj := &object{meta: meta, data: append([]byte(nil), data...)}
	s.buckets[bucket][name] = obj
	return obj
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if s.failToken.Load() > 0 {
		s.failToken.Add(-1)
		writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "token request rejected")
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "urn:ietf:params:oauth:grant-type:jwt-bearer":
		if err := s.verifyAssertion(r.PostForm.Get("assertion")); err != nil {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", err.Error())
			return
		}
	case "refresh_token":
		if r.PostForm.Get("refresh_token") == "" {
			writeOAuthError(w, http.StatusBadRequest, "invalid_request", "missing refresh_token")
			return
		}
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", r.PostForm.Get("grant_type"))
		return
	}

	s.issueToken(w)
}

func (s *Server) handleMetadataToken(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Metadata-Flavor") != "Google" {
		http.Error(w, "missing Metadata-Flavor header", http.StatusForbidden)
		return
	}
	s.issueToken(w)
}

func (s *Server) verifyAssertion(assertion string) error {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(assertion, claims, func(tok *jwt.Token) (any, error) {
		return &RSAKey(s.t).PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if aud, _ := claims["aud"].(string); aud != s.TokenURL() {
		return fmt.Errorf("assertion audience %q does not match %q", aud, s.TokenURL())
	}
	if scope, _ := claims["scope"].(string); scope == "" {
		return fmt.Errorf("assertion has no scope")
	}
	return nil
}

func (s *Server) issueToken(w http.ResponseWriter) {
	n := s.mints.Add(1)
	token := tokenPrefix + strconv.FormatInt(n, 10)

	s.mu.Lock()
	s.issued[token] = true
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"expires_in":   s.expiresIn.Load(),
		"token_type":   "Bearer",
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := ok && s.issued[token]
		s.mu.Unlock()
		if !valid {
			writeAPIError(w, http.StatusUnauthorized, "Invalid Credentials")
			return
		}
		s.apiCalls.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")

	s.mu.Lock()
	names := append([]string(nil), s.projects[project]...)
	s.mu.Unlock()
	sort.Strings(names)

	items := make([]*storage.Bucket, 0, len(names))
	for _, name := range names {
		items = append(items, &storage.Bucket{
			Kind:         "storage#bucket",
			Name:         name,
			Location:     "US",
			StorageClass: "STANDARD",
			TimeCreated:  "2024-01-02T03:04:05Z",
		})
	}
	writeJSON(w, http.StatusOK, &storage.Buckets{Kind: "storage#buckets", Items: items})
}

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()
	prefix := q.Get("prefix")
	delimiter := q.Get("delimiter")
	pageToken := q.Get("pageToken")
	maxResults, _ := strconv.Atoi(q.Get("maxResults"))

	s.mu.Lock()
	objects, ok := s.buckets[bucket]
	if !ok {
		s.mu.Unlock()
		writeAPIError(w, http.StatusNotFound, "The specified bucket does not exist.")
		return
	}
	names := make([]string, 0, len(objects))
	for name := range objects {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		items    []*storage.Object
		prefixes []string
		seen     = map[string]bool{}
		next     string
	)
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) || name <= pageToken {
			continue
		}
		if maxResults > 0 && len(items)+len(prefixes) >= maxResults {
			next = lastEntry(items, prefixes)
			break
		}
		if delimiter != "" {
			if i := strings.Index(name[len(prefix):], delimiter); i >= 0 {
				p := name[:len(prefix)+i+len(delimiter)]
				if !seen[p] {
					seen[p] = true
					prefixes = append(prefixes, p)
				}
				continue
			}
		}
		meta := objects[name].meta
		items = append(items, &meta)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, &storage.Objects{
		Kind:          "storage#objects",
		Items:         items,
		Prefixes:      prefixes,
		NextPageToken: next,
	})
}

func lastEntry(items []*storage.Object, prefixes []string) string {
	last := ""
	if len(items) > 0 {
		last = items[len(items)-1].Name
	}
	if len(prefixes) > 0 && prefixes[len(prefixes)-1] > last {
		// Skip everything under the last rolled-up prefix.
		last = prefixes[len(prefixes)-1] + "\xff"
	}
	return last
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, string, *object, bool) {
	bucket := chi.URLParam(r, "bucket")
	name := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid object name")
			return "", "", nil, false
		}
		name = unescaped
	}

	s.mu.Lock()
	obj, ok := s.buckets[bucket][name]
	s.mu.Unlock()
	if !ok {
		writeAPIError(w, http.StatusNotFound, fmt.Sprintf("No such object: %s/%s", bucket, name))
		return bucket, name, nil, false
	}
	return bucket, name, obj, true
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	_, _, obj, ok := s.lookup(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	meta := obj.meta
	data := append([]byte(nil), obj.data...)
	s.mu.Unlock()

	if r.URL.Query().Get("alt") != "media" {
		writeJSON(w, http.StatusOK, &meta)
		return
	}

	status := http.StatusOK
	if rng := r.Header.Get("Range"); rng != "" {
		start, end, err := parseRange(rng, len(data))
		if err != nil {
			writeAPIError(w, http.StatusRequestedRangeNotSatisfiable, err.Error())
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, len(data)))
		data = data[start : end+1]
		status = http.StatusPartialContent
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// parseRange handles the single-range forms "bytes=a-b", "bytes=a-" and "bytes=-n".
func parseRange(header string, size int) (int, int, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("unsupported range unit")
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed range")
	}

	var start, end int
	switch {
	case first == "":
		n, err := strconv.Atoi(last)
		if err != nil {
			return 0, 0, err
		}
		start, end = size-n, size-1
	case last == "":
		n, err := strconv.Atoi(first)
		if err != nil {
			return 0, 0, err
		}
		start, end = n, size-1
	default:
		a, err := strconv.Atoi(first)
		if err != nil {
			return 0, 0, err
		}
		b, err := strconv.Atoi(last)
		if err != nil {
			return 0, 0, err
		}
		start, end = a, min(b, size-1)
	}

	if start < 0 {
		start = 0
	}
	if start > end || start >= size {
		return 0, 0, fmt.Errorf("range not satisfiable")
	}
	return start, end, nil
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	bucket, name, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.buckets[bucket], name)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePatchObject(w http.ResponseWriter, r *http.Request) {
	_, _, obj, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid patch body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fields := map[string]*string{
		"cacheControl":       &obj.meta.CacheControl,
		"contentDisposition": &obj.meta.ContentDisposition,
		"contentEncoding":    &obj.meta.ContentEncoding,
		"contentLanguage":    &obj.meta.ContentLanguage,
		"contentType":        &obj.meta.ContentType,
	}
	for key, raw := range patch {
		if key == "metadata" {
			var md map[string]*string
			if err := json.Unmarshal(raw, &md); err != nil {
				writeAPIError(w, http.StatusBadRequest, "invalid metadata")
				return
			}
			if obj.meta.Metadata == nil {
				obj.meta.Metadata = make(map[string]string)
			}
			for k, v := range md {
				if v == nil {
					delete(obj.meta.Metadata, k)
				} else {
					obj.meta.Metadata[k] = *v
				}
			}
			continue
		}

		dst, ok := fields[key]
		if !ok {
			writeAPIError(w, http.StatusBadRequest, "unsupported field "+key)
			return
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid value for "+key)
			return
		}
		if v == nil {
			*dst = ""
		} else {
			*dst = *v
		}
	}
	obj.meta.Metageneration++

	writeJSON(w, http.StatusOK, &obj.meta)
}

func (s *Server) handleInsertObject(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()
	if q.Get("uploadType") != "multipart" {
		writeAPIError(w, http.StatusBadRequest, "only multipart uploads are supported")
		return
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" {
		writeAPIError(w, http.StatusBadRequest, "expected multipart/related body")
		return
	}

	mr := multipart.NewReader(r.Body, params["boundary"])

	metaPart, err := mr.NextPart()
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "missing metadata part")
		return
	}
	var meta storage.Object
	if err := json.NewDecoder(metaPart).Decode(&meta); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid metadata part")
		return
	}

	mediaPart, err := mr.NextPart()
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "missing media part")
		return
	}
	data, err := io.ReadAll(mediaPart)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "read media part")
		return
	}
	if meta.ContentType == "" {
		meta.ContentType = mediaPart.Header.Get("Content-Type")
	}

	name := meta.Name
	if name == "" {
		name = q.Get("name")
	}

	s.mu.Lock()
	obj := s.putLocked(bucket, name, data, meta)
	resp := obj.meta
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, &resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": &googleapi.Error{Code: status, Message: message},
	})
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
