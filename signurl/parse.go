package signurl

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sagarc03/gsutil"
)

// ParseDuration parses a validity such as "30s", "5m", "2h" or "1d".
// A bare number is taken as hours.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	pos := strings.IndexFunc(s, unicode.IsLetter)
	if pos < 0 {
		pos = len(s)
	}

	num, err := strconv.ParseUint(s[:pos], 10, 32)
	if err != nil {
		return 0, gsutil.NewValidationError("duration", s, "expected a non-negative number with an optional s, m, h or d suffix")
	}

	var unit time.Duration
	switch strings.ToLower(s[pos:]) {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "", "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	default:
		return 0, gsutil.NewValidationError("duration", s, "unknown duration suffix '"+s[pos:]+"'")
	}

	if num > uint64(math.MaxInt64/int64(unit)) {
		return 0, gsutil.NewValidationError("duration", s, "out of range")
	}
	return time.Duration(num) * unit, nil
}

// Method is the HTTP method a signed URL is valid for.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
	MethodConnect Method = "CONNECT"
	MethodPatch   Method = "PATCH"
	MethodTrace   Method = "TRACE"
	// MethodResumable signs a POST that starts a resumable upload.
	MethodResumable Method = "RESUMABLE"
)

var methods = []Method{
	MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead,
	MethodOptions, MethodConnect, MethodPatch, MethodTrace, MethodResumable,
}

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range methods {
		if m == known {
			return m, nil
		}
	}
	return "", gsutil.NewValidationError("method", s, "unsupported signed url method")
}

// Scheme selects the signature format.
type Scheme string

const (
	SchemeV4 Scheme = "v4"
	SchemeV2 Scheme = "v2"
)

// ParseScheme parses "v4" or "v2". An empty string selects SchemeV4.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeV4:
		return SchemeV4, nil
	case SchemeV2:
		return SchemeV2, nil
	default:
		return "", gsutil.NewValidationError("scheme", s, "expected v4 or v2")
	}
}
