// Package signurl generates signed object URLs from a service account key.
//
// Signing is a local computation. The default scheme is V4
// (GOOG4-RSA-SHA256), which limits validity to seven days; the older V2
// scheme is available for tools that still expect GoogleAccessId URLs.
//
// Usage:
//
//	signer, err := signurl.NewSigner(key)
//	if err != nil {
//	    return err
//	}
//	res, err := signer.Sign(id, signurl.Options{Method: signurl.MethodGet, Duration: time.Hour})
package signurl
