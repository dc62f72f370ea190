// Package gsutil provides the shared vocabulary of the gsutil command-line
// client: object identifiers, name validation, and the error taxonomy used
// by every other package in the module.
//
// # Key Components
//
//   - ObjectID: a bucket plus optional object name parsed from a gs:// URL
//   - ValidationError: malformed input caught before any I/O is attempted
//   - Sentinel errors: ErrTransport, ErrAuth, ErrAPI, ErrSigning, ErrValidation
//
// # Error Taxonomy
//
// Each subsystem returns its own typed error which matches one sentinel via
// errors.Is:
//
//   - transport.TransportError, transport.UnsupportedMethodError: ErrTransport
//   - oauth.AuthError, oauth.TokenParseError: ErrAuth
//   - client.APIError: ErrAPI
//   - signurl.SigningError: ErrSigning
//   - ValidationError: ErrValidation
//
// # Example Usage
//
//	id, err := gsutil.ParseURL("gs://my-bucket/path/to/file.txt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := id.RequireObject(); err != nil {
//	    log.Fatal(err)
//	}
//
// See the oauth, transport and client packages for the authenticated request
// pipeline and the signurl package for offline URL signing.
package gsutil
