package gsutil

import (
	"net"
	"strings"
	"unicode/utf8"
)

const (
	maxBucketNameLen    = 222
	maxBucketSegmentLen = 63
	maxObjectNameLen    = 1024
)

// IsValidBucketName validates a bucket name against the object store's naming rules.
// It checks that the name:
//   - is 3-63 characters, or up to 222 when dot-separated with each segment at most 63
//   - contains only lowercase letters, digits, '-', '_' and '.'
//   - starts and ends with a letter or digit
//   - is not an IPv4 address
//   - does not start with "goog" or contain "google"
func IsValidBucketName(name string) bool {
	if len(name) < 3 || len(name) > maxBucketNameLen {
		return false
	}

	for _, segment := range strings.Split(name, ".") {
		if segment == "" || len(segment) > maxBucketSegmentLen {
			return false
		}
	}

	if !isAlnumLower(name[0]) || !isAlnumLower(name[len(name)-1]) {
		return false
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isAlnumLower(c) && c != '-' && c != '_' && c != '.' {
			return false
		}
	}

	if ip := net.ParseIP(name); ip != nil {
		return false
	}

	if strings.HasPrefix(name, "goog") || strings.Contains(name, "google") {
		return false
	}

	return true
}

// IsValidObjectName validates an object name.
// It checks that the name:
//   - is 1-1024 bytes of valid UTF-8
//   - is not "." or ".."
//   - contains no carriage return or line feed
//   - does not start with ".well-known/acme-challenge/"
func IsValidObjectName(name string) bool {
	if name == "" || len(name) > maxObjectNameLen {
		return false
	}

	if name == "." || name == ".." {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	if strings.ContainsAny(name, "\r\n") {
		return false
	}

	if strings.HasPrefix(name, ".well-known/acme-challenge/") {
		return false
	}

	return true
}

func isAlnumLower(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
