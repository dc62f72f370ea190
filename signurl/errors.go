package signurl

import (
	"fmt"

	"github.com/sagarc03/gsutil"
)

// SigningError reports a request that cannot be signed.
type SigningError struct {
	Reason string
	Err    error
}

func (e *SigningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing: %s: %v", e.Reason, e.Err)
	}
	return "signing: " + e.Reason
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Is reports whether target is gsutil.ErrSigning.
func (e *SigningError) Is(target error) bool {
	return target == gsutil.ErrSigning
}
