// Package transport converts vendor-neutral request envelopes into net/http
// calls and buffers the response back into a vendor-neutral envelope.
//
// Request and response bodies are always fully buffered. The buffer is sized
// from the Content-Length header when one is present; a response that ends
// before its declared length is reported as a TransportError.
//
// Only GET, POST, PUT, PATCH and DELETE are sent. Any other method fails with
// UnsupportedMethodError before a connection is attempted.
package transport
