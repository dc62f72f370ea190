package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/sagarc03/gsutil"
	"github.com/sagarc03/gsutil/transport"
)

// APIError represents a non-success response from the object store.
type APIError struct {
	StatusCode int
	Message    string
	Reason     string
	Body       string
}

func (e *APIError) Error() string {
	msg := "api error: " + strconv.Itoa(e.StatusCode)
	if e.Message != "" {
		msg += " - " + e.Message
	}
	return msg
}

// Is reports whether target matches this error.
// It matches gsutil.ErrAPI, or an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	if target == gsutil.ErrAPI {
		return true
	}
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the bucket or object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned when the token is rejected (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrForbidden is returned when the account lacks permission (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}

	// ErrPreconditionFailed is returned when a generation match fails (412).
	ErrPreconditionFailed = &APIError{StatusCode: http.StatusPreconditionFailed}
)

// errorEnvelope is the JSON error document of the object store API.
type errorEnvelope struct {
	Error *googleapi.Error `json:"error"`
}

// ParseAPIError builds an APIError from a non-success response, extracting
// the vendor message when the body is a JSON error envelope.
func ParseAPIError(resp *transport.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
	}

	var env errorEnvelope
	if err := json.Unmarshal(resp.Body, &env); err == nil && env.Error != nil {
		apiErr.Message = env.Error.Message
		if len(env.Error.Errors) > 0 {
			apiErr.Reason = env.Error.Errors[0].Reason
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(resp.Body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
