package oauth

import (
	"errors"
	"fmt"

	"github.com/sagarc03/gsutil"
)

var (
	// ErrNoDefaultProvider is returned by Default when no credential source is found.
	ErrNoDefaultProvider = errors.New("unable to determine default token provider")
	// ErrNoScopes is returned when a token is requested for an empty scope set.
	ErrNoScopes = fmt.Errorf("%w: at least one scope is required", gsutil.ErrValidation)
)

// AuthError reports a failure to obtain a token or attach it to a request.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is gsutil.ErrAuth.
func (e *AuthError) Is(target error) bool {
	return target == gsutil.ErrAuth
}

// TokenParseError reports a token endpoint response that could not be turned
// into a token: a non-success status, malformed JSON or missing fields.
type TokenParseError struct {
	StatusCode  int
	Reason      string
	Code        string
	Description string
	Err         error
}

func (e *TokenParseError) Error() string {
	msg := "parse token response: " + e.Reason
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
		if e.Description != "" {
			msg += ": " + e.Description
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TokenParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is gsutil.ErrAuth.
func (e *TokenParseError) Is(target error) bool {
	return target == gsutil.ErrAuth
}
