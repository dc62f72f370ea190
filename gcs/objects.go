package gcs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/client"
	"github.com/sagarc03/gsutil/transport"
)

// DefaultContentEncoding is sent with uploads that do not set one.
const DefaultContentEncoding = "identity"

// GetObject fetches an object's metadata.
func (s *Service) GetObject(ctx context.Context, id gsutil.ObjectID) (*storage.Object, error) {
	if err := id.RequireObject(); err != nil {
		return nil, err
	}

	req := transport.NewRequest(http.MethodGet, s.objectURL(id, nil), nil)
	obj, err := client.Execute(ctx, s.client, req, client.JSON[storage.Object]())
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &obj, nil
}

// DownloadOptions configures Download.
type DownloadOptions struct {
	// Range is a byte range in one of the forms "a-b", "a-" or "-n".
	Range string
}

// Download fetches an object's content.
func (s *Service) Download(ctx context.Context, id gsutil.ObjectID, opts DownloadOptions) ([]byte, error) {
	if err := id.RequireObject(); err != nil {
		return nil, err
	}

	req := transport.NewRequest(http.MethodGet, s.objectURL(id, url.Values{"alt": {"media"}}), nil)
	if opts.Range != "" {
		header, err := RangeHeader(opts.Range)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Range", header)
	}

	data, err := client.Execute(ctx, s.client, req, client.Bytes())
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	return data, nil
}

// DeleteObject deletes an object.
func (s *Service) DeleteObject(ctx context.Context, id gsutil.ObjectID) error {
	if err := id.RequireObject(); err != nil {
		return err
	}

	req := transport.NewRequest(http.MethodDelete, s.objectURL(id, nil), nil)
	if _, err := client.Execute(ctx, s.client, req, client.Discard()); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// PatchObject applies a metadata patch and returns the updated object.
func (s *Service) PatchObject(ctx context.Context, id gsutil.ObjectID, patch MetadataPatch) (*storage.Object, error) {
	if err := id.RequireObject(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, gsutil.NewValidationError("metadata patch", "", "no headers given")
	}

	body, err := json.Marshal(patch.body())
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	req := transport.NewBytesRequest(http.MethodPatch, s.objectURL(id, nil), body)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	obj, err := client.Execute(ctx, s.client, req, client.JSON[storage.Object]())
	if err != nil {
		return nil, fmt.Errorf("patch %s: %w", id, err)
	}
	return &obj, nil
}

// InsertOptions configures InsertObject.
type InsertOptions struct {
	ContentType     string
	ContentEncoding string
	PredefinedACL   PredefinedACL
	Metadata        map[string]string
}

// InsertObject uploads body as a single multipart request.
func (s *Service) InsertObject(ctx context.Context, id gsutil.ObjectID, body io.Reader, opts InsertOptions) (*storage.Object, error) {
	if err := id.RequireObject(); err != nil {
		return nil, err
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	contentEncoding := opts.ContentEncoding
	if contentEncoding == "" {
		contentEncoding = DefaultContentEncoding
	}

	meta := &storage.Object{
		Name:            id.Object,
		ContentType:     contentType,
		ContentEncoding: contentEncoding,
		Metadata:        opts.Metadata,
	}

	payload, boundary, err := multipartRelated(meta, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("encode upload %s: %w", id, err)
	}

	query := url.Values{
		"uploadType": {"multipart"},
		"name":       {id.Object},
	}
	if opts.PredefinedACL != "" {
		query.Set("predefinedAcl", string(opts.PredefinedACL))
	}

	req := transport.NewBytesRequest(http.MethodPost, s.uploadURL(id.Bucket, query), payload)
	req.Header.Set("Content-Type", "multipart/related; boundary="+boundary)

	obj, err := client.Execute(ctx, s.client, req, client.JSON[storage.Object]())
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", id, err)
	}
	return &obj, nil
}

// multipartRelated encodes the metadata part followed by the media part.
func multipartRelated(meta *storage.Object, contentType string, media io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, "", fmt.Errorf("encode metadata: %w", err)
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json; charset=UTF-8"}})
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(metaJSON); err != nil {
		return nil, "", err
	}

	part, err = mw.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, media); err != nil {
		return nil, "", fmt.Errorf("read media: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.Boundary(), nil
}

// ListOptions configures ListObjects.
type ListOptions struct {
	Prefix     string
	Delimiter  string
	PageToken  string
	MaxResults int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Prefix != "" {
		q.Set("prefix", o.Prefix)
	}
	if o.Delimiter != "" {
		q.Set("delimiter", o.Delimiter)
	}
	if o.PageToken != "" {
		q.Set("pageToken", o.PageToken)
	}
	if o.MaxResults > 0 {
		q.Set("maxResults", strconv.Itoa(o.MaxResults))
	}
	return q
}

// ListObjects fetches a single page of objects in bucket.
func (s *Service) ListObjects(ctx context.Context, bucket string, opts ListOptions) (*storage.Objects, error) {
	req := transport.NewRequest(http.MethodGet, s.bucketURL(bucket, opts.query()), nil)
	page, err := client.Execute(ctx, s.client, req, client.JSON[storage.Objects]())
	if err != nil {
		return nil, fmt.Errorf("list gs://%s: %w", bucket, err)
	}
	return &page, nil
}

// ListAllObjects follows page tokens and returns every object and common
// prefix matching opts.
func (s *Service) ListAllObjects(ctx context.Context, bucket string, opts ListOptions) ([]*storage.Object, []string, error) {
	var (
		items    []*storage.Object
		prefixes []string
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		page, err := s.ListObjects(ctx, bucket, opts)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, page.Items...)
		prefixes = append(prefixes, page.Prefixes...)

		if page.NextPageToken == "" {
			break
		}
		opts.PageToken = page.NextPageToken
	}

	return items, prefixes, nil
}

// ListBuckets returns every bucket in project.
func (s *Service) ListBuckets(ctx context.Context, project string) ([]*storage.Bucket, error) {
	if project == "" {
		return nil, gsutil.NewValidationError("project", "", "a project is required to list buckets")
	}

	var buckets []*storage.Bucket
	q := url.Values{"project": {project}}

	for {
		req := transport.NewRequest(http.MethodGet, withQuery(s.endpoint+"/storage/v1/b", q), nil)
		page, err := client.Execute(ctx, s.client, req, client.JSON[storage.Buckets]())
		if err != nil {
			return nil, fmt.Errorf("list buckets in %s: %w", project, err)
		}

		buckets = append(buckets, page.Items...)

		if page.NextPageToken == "" {
			break
		}
		q.Set("pageToken", page.NextPageToken)
	}

	return buckets, nil
}
