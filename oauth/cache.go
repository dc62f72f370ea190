package oauth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// Cache stores tokens by scope hash.
type Cache interface {
	// Get returns the token stored for scopeHash, if any. Expiry is checked
	// by the caller.
	Get(ctx context.Context, scopeHash string) (*oauth2.Token, bool)
	// Put stores tok under scopeHash, replacing any previous token.
	Put(ctx context.Context, scopeHash string, tok *oauth2.Token) error
}

// MemoryCache is an in-process Cache safe for concurrent use.
type MemoryCache struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{tokens: make(map[string]oauth2.Token)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, scopeHash string) (*oauth2.Token, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tok, ok := c.tokens[scopeHash]
	if !ok {
		return nil, false
	}
	return &tok, true
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, scopeHash string, tok *oauth2.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens[scopeHash] = *tok
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}
