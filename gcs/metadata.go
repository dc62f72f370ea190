package gcs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sagarc03/gsutil"
)

// CustomMetadataPrefix marks a header as user metadata.
const CustomMetadataPrefix = "x-goog-meta-"

// headerFields maps settable headers onto object resource fields.
var headerFields = map[string]string{
	"cache-control":       "cacheControl",
	"content-disposition": "contentDisposition",
	"content-encoding":    "contentEncoding",
	"content-language":    "contentLanguage",
	"content-type":        "contentType",
}

// MetadataPatch describes changes to an object's metadata. A nil value
// removes the field or key.
type MetadataPatch struct {
	Fields   map[string]*string
	Metadata map[string]*string
}

// ParseHeaderPatch builds a MetadataPatch from "Header:value" pairs. A header
// given without a colon is removed.
func ParseHeaderPatch(headers []string) (MetadataPatch, error) {
	patch := MetadataPatch{
		Fields:   make(map[string]*string),
		Metadata: make(map[string]*string),
	}

	for _, h := range headers {
		name, value, hasValue := strings.Cut(h, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return MetadataPatch{}, gsutil.NewValidationError("header", h, "header name is empty")
		}

		var v *string
		if hasValue {
			trimmed := strings.TrimSpace(value)
			v = &trimmed
		}

		if key, ok := strings.CutPrefix(name, CustomMetadataPrefix); ok {
			if key == "" {
				return MetadataPatch{}, gsutil.NewValidationError("header", h, "metadata key is empty")
			}
			patch.Metadata[key] = v
			continue
		}

		field, ok := headerFields[name]
		if !ok {
			return MetadataPatch{}, gsutil.NewValidationError("header", name, "cannot be set")
		}
		patch.Fields[field] = v
	}

	return patch, nil
}

// IsEmpty reports whether the patch changes nothing.
func (p MetadataPatch) IsEmpty() bool {
	return len(p.Fields) == 0 && len(p.Metadata) == 0
}

func (p MetadataPatch) body() map[string]any {
	body := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		body[k] = v
	}
	if len(p.Metadata) > 0 {
		md := make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			md[k] = v
		}
		body["metadata"] = md
	}
	return body
}

// PredefinedACL is a canned ACL applied on upload.
type PredefinedACL string

const (
	ACLAuthenticatedRead      PredefinedACL = "authenticatedRead"
	ACLBucketOwnerFullControl PredefinedACL = "bucketOwnerFullControl"
	ACLBucketOwnerRead        PredefinedACL = "bucketOwnerRead"
	ACLPrivate                PredefinedACL = "private"
	ACLProjectPrivate         PredefinedACL = "projectPrivate"
	ACLPublicRead             PredefinedACL = "publicRead"
)

var predefinedACLs = map[string]PredefinedACL{}

func init() {
	for _, acl := range []PredefinedACL{
		ACLAuthenticatedRead,
		ACLBucketOwnerFullControl,
		ACLBucketOwnerRead,
		ACLPrivate,
		ACLProjectPrivate,
		ACLPublicRead,
	} {
		predefinedACLs[strings.ToLower(string(acl))] = acl
	}
	predefinedACLs["public-read"] = ACLPublicRead
	predefinedACLs["authenticated-read"] = ACLAuthenticatedRead
	predefinedACLs["bucket-owner-read"] = ACLBucketOwnerRead
	predefinedACLs["bucket-owner-full-control"] = ACLBucketOwnerFullControl
	predefinedACLs["project-private"] = ACLProjectPrivate
}

// ParsePredefinedACL accepts the JSON API names case-insensitively as well as
// the XML API's hyphenated names.
func ParsePredefinedACL(s string) (PredefinedACL, error) {
	if s == "" {
		return "", nil
	}
	acl, ok := predefinedACLs[strings.ToLower(s)]
	if !ok {
		return "", gsutil.NewValidationError("canned acl", s, "unknown predefined ACL")
	}
	return acl, nil
}

// RangeHeader converts "a-b", "a-" or "-n" into a Range header value.
func RangeHeader(s string) (string, error) {
	first, last, ok := strings.Cut(s, "-")
	if !ok || (first == "" && last == "") {
		return "", gsutil.NewValidationError("range", s, "expected start-end, start- or -suffix")
	}

	var start, end int64 = -1, -1
	if first != "" {
		n, err := strconv.ParseInt(first, 10, 64)
		if err != nil || n < 0 {
			return "", gsutil.NewValidationError("range", s, "start is not a non-negative integer")
		}
		start = n
	}
	if last != "" {
		n, err := strconv.ParseInt(last, 10, 64)
		if err != nil || n < 0 {
			return "", gsutil.NewValidationError("range", s, "end is not a non-negative integer")
		}
		end = n
	}
	if start >= 0 && end >= 0 && end < start {
		return "", gsutil.NewValidationError("range", s, "end precedes start")
	}

	return fmt.Sprintf("bytes=%s-%s", first, last), nil
}
