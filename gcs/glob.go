package gcs

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	storage "google.golang.org/api/storage/v1"

	"github.com/sagarc03/gsutil"
)

// Glob lists the objects in bucket whose names match pattern. "*" and "?"
// stop at "/"; "**" crosses it.
func (s *Service) Glob(ctx context.Context, bucket, pattern string) ([]*storage.Object, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, gsutil.NewValidationError("pattern", pattern, "malformed wildcard")
	}

	items, _, err := s.ListAllObjects(ctx, bucket, ListOptions{Prefix: StaticPrefix(pattern)})
	if err != nil {
		return nil, err
	}

	matched := items[:0]
	for _, obj := range items {
		ok, err := doublestar.Match(pattern, obj.Name)
		if err != nil {
			return nil, gsutil.NewValidationError("pattern", pattern, err.Error())
		}
		if ok {
			matched = append(matched, obj)
		}
	}
	return matched, nil
}

// StaticPrefix returns the longest directory-aligned prefix of pattern that
// contains no wildcard. It is safe to send as a list prefix.
func StaticPrefix(pattern string) string {
	idx := firstMeta(pattern)
	if idx < 0 {
		return pattern
	}
	slash := strings.LastIndex(pattern[:idx], "/")
	if slash < 0 {
		return ""
	}
	return unescape(pattern[:slash+1])
}

func firstMeta(pattern string) int {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*', '?', '[', '{':
			return i
		}
	}
	return -1
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
