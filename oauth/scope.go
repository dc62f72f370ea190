package oauth

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// Storage scopes.
const (
	ScopeFullControl = "https://www.googleapis.com/auth/devstorage.full_control"
	ScopeReadWrite   = "https://www.googleapis.com/auth/devstorage.read_write"
	ScopeReadOnly    = "https://www.googleapis.com/auth/devstorage.read_only"
)

// normalizeScopes returns a sorted copy of scopes with duplicates and blanks removed.
func normalizeScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ScopeHash returns the cache identity of a scope set. Order and duplicates
// do not affect the result.
func ScopeHash(scopes []string) string {
	h := sha256.New()
	for _, s := range normalizeScopes(scopes) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
