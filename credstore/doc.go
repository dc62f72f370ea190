// Package credstore persists OAuth2 tokens in SQLite so that consecutive CLI
// invocations can reuse a token instead of minting a new one each time.
//
// Tokens are keyed by account and scope hash. A Store hands out an
// oauth.Cache per account:
//
//	store, err := credstore.Open(ctx, "~/.cache/gsutil/tokens.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	provider, err := oauth.LoadCredentials(path, oauth.WithCache(store.Cache(path)))
package credstore
