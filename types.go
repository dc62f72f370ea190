package gsutil

import "strings"

// Scheme is the URL scheme accepted for object store locations.
const Scheme = "gs"

// ObjectID identifies a bucket, or an object within a bucket.
// Object is empty for bucket-level operations.
type ObjectID struct {
	Bucket string
	Object string
}

// ParseURL parses a gs://bucket/object URL. The object part is optional.
//
// Supported formats:
//   - gs://bucket
//   - gs://bucket/
//   - gs://bucket/path/to/object
//   - gs://bucket/prefix/**/*.log
func ParseURL(raw string) (ObjectID, error) {
	if raw == "" {
		return ObjectID{}, NewValidationError("url", "", "empty url")
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return ObjectID{}, NewValidationError("url", raw, "missing scheme")
	}
	if scheme != Scheme {
		return ObjectID{}, NewValidationError("url scheme", "", scheme)
	}

	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return ObjectID{}, NewValidationError("url", raw, "no bucket specified")
	}

	id := ObjectID{Bucket: bucket, Object: object}
	if err := id.Validate(); err != nil {
		return ObjectID{}, err
	}

	return id, nil
}

// IsURL reports whether s looks like a gs:// URL rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, Scheme+"://")
}

// Validate checks the bucket name and, if present, the object name.
func (id ObjectID) Validate() error {
	if !IsValidBucketName(id.Bucket) {
		return NewValidationError("bucket name", id.Bucket, "must be 3-63 characters of lowercase letters, digits, '-', '_' or '.'")
	}
	if id.Object != "" && !IsValidObjectName(id.Object) {
		return NewValidationError("object name", id.Object, "must be 1-1024 bytes of valid UTF-8 without CR or LF")
	}
	return nil
}

// RequireObject returns a ValidationError if the identifier names only a bucket.
func (id ObjectID) RequireObject() error {
	if id.Object == "" {
		return NewValidationError("url", id.String(), "object name required")
	}
	return nil
}

// HasObject reports whether the identifier names an object.
func (id ObjectID) HasObject() bool {
	return id.Object != ""
}

// HasWildcard reports whether the object name contains glob metacharacters.
func (id ObjectID) HasWildcard() bool {
	return strings.ContainsAny(id.Object, "*?[{")
}

// Join returns an identifier for name within the same bucket, treating the
// current object as a directory prefix.
func (id ObjectID) Join(name string) ObjectID {
	prefix := id.Object
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return ObjectID{Bucket: id.Bucket, Object: prefix + name}
}

// String returns the gs:// form of the identifier.
func (id ObjectID) String() string {
	if id.Object == "" {
		return Scheme + "://" + id.Bucket
	}
	return Scheme + "://" + id.Bucket + "/" + id.Object
}
