package oauth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sagarc03/gsutil/oauth"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := oauth.NewMemoryCache()

	_, ok := cache.Get(ctx, "missing")
	assert.False(t, ok)

	tok := &oauth2.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: time.Unix(100, 0)}
	require.NoError(t, cache.Put(ctx, "h1", tok))

	got, ok := cache.Get(ctx, "h1")
	require.True(t, ok)
	assert.Equal(t, "abc", got.AccessToken)

	got.AccessToken = "mutated"
	again, _ := cache.Get(ctx, "h1")
	assert.Equal(t, "abc", again.AccessToken, "callers must not be able to mutate cached entries")

	require.NoError(t, cache.Put(ctx, "h1", &oauth2.Token{AccessToken: "def"}))
	got, _ = cache.Get(ctx, "h1")
	assert.Equal(t, "def", got.AccessToken)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := oauth.NewMemoryCache()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("h%d", i%5)
			_ = cache.Put(ctx, key, &oauth2.Token{AccessToken: key})
			tok, ok := cache.Get(ctx, key)
			if assert.True(t, ok) {
				assert.Equal(t, key, tok.AccessToken)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, cache.Len())
}
