// Package oauth obtains and caches OAuth2 bearer tokens for object store
// requests.
//
// Token acquisition is a two-phase protocol. Provider.Token either returns a
// cached token or a PendingRequest describing the HTTP exchange needed to mint
// one. The caller performs that exchange with whatever transport it owns and
// hands the response back to Provider.ParseTokenResponse, which validates it,
// caches the token under the request's scope hash and returns it.
//
// # Provider Variants
//
//   - ServiceAccount: signs an RS256 JWT assertion with a service account key
//   - AuthorizedUser: exchanges a gcloud user refresh token
//   - Metadata: asks the GCE metadata server for the instance account's token
//
// Default discovers one of these from the environment, mirroring application
// default credentials: GOOGLE_APPLICATION_CREDENTIALS, then the gcloud
// well-known file, then the metadata server.
//
// # Caching
//
// Tokens are cached per scope set in a Cache. MemoryCache is the default;
// the credstore package provides a persistent SQLite-backed cache. Concurrent
// misses for the same scopes each mint a token and the last write wins.
package oauth
