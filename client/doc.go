// Package client executes object store requests with OAuth2 authentication.
//
// Each call to Execute runs the same sequence: look up a token for the
// client's scopes, mint one through the token endpoint on a miss, attach it
// as the Authorization header, send the request and decode the response.
// Nothing is retried; every failure is returned as a typed error:
//
//   - oauth.AuthError when a token cannot be minted or attached
//   - transport.TransportError when the request cannot be exchanged
//   - APIError when the store answers with a non-success status or a body
//     that does not decode
//
// # Example Usage
//
//	c := client.New(transport.New(), provider)
//	obj, err := client.Execute(ctx, c, req, client.JSON[storage.Object]())
package client
