package transport

import (
	"fmt"

	"github.com/sagarc03/gsutil"
)

// TransportError wraps a failure to exchange a request with the remote end.
type TransportError struct {
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is gsutil.ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == gsutil.ErrTransport
}

// UnsupportedMethodError is returned for methods outside the supported set.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported http method %q: expected one of GET, POST, PUT, PATCH, DELETE", e.Method)
}

// Is reports whether target is gsutil.ErrTransport.
func (e *UnsupportedMethodError) Is(target error) bool {
	return target == gsutil.ErrTransport
}
