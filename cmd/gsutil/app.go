package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/sagarc03/gsutil/client"
	"github.com/sagarc03/gsutil/config"
	"github.com/sagarc03/gsutil/credstore"
	"github.com/sagarc03/gsutil/gcs"
	"github.com/sagarc03/gsutil/oauth"
	"github.com/sagarc03/gsutil/transport"
)

// newService wires transport, token provider and executor from the config in
// ctx. The returned close func releases the token cache.
func newService(ctx context.Context) (*gcs.Service, func(), error) {
	cfg, err := config.FromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.Default()

	providerOpts := []oauth.Option{oauth.WithLogger(logger)}
	closeFn := func() {}
	if cfg.TokenCacheEnabled() {
		// Without a cache every invocation mints a fresh token.
		if account, err := cacheAccount(cfg); err != nil {
			logger.WarnContext(ctx, "token cache disabled", "error", err)
		} else if store, err := credstore.Open(ctx, cfg.TokenCache); err != nil {
			logger.WarnContext(ctx, "token cache unavailable", "path", cfg.TokenCache, "error", err)
		} else {
			providerOpts = append(providerOpts, oauth.WithCache(store.Cache(account)))
			closeFn = func() {
				if n, err := store.Prune(context.WithoutCancel(ctx)); err != nil {
					logger.DebugContext(ctx, "prune token cache", "error", err)
				} else if n > 0 {
					logger.DebugContext(ctx, "pruned expired tokens", "count", n)
				}
				_ = store.Close()
			}
		}
	}

	provider, err := newProvider(ctx, cfg, providerOpts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	senderOpts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithLogger(logger),
	}
	if cfg.Transfer.RateLimit > 0 {
		burst := max(1, int(cfg.Transfer.RateLimit))
		senderOpts = append(senderOpts, transport.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Transfer.RateLimit), burst)))
	}

	c := client.New(transport.New(senderOpts...), provider, client.WithLogger(logger))
	return gcs.NewService(c, gcs.WithEndpoint(cfg.Endpoint)), closeFn, nil
}

func newProvider(ctx context.Context, cfg *config.Config, opts []oauth.Option) (oauth.Provider, error) {
	if cfg.Credentials != "" {
		provider, err := oauth.LoadCredentials(cfg.Credentials, opts...)
		if err != nil {
			return nil, fmt.Errorf("load credentials: %w", err)
		}
		return provider, nil
	}

	provider, err := oauth.Default(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("find default credentials: %w", err)
	}
	return provider, nil
}

// cacheAccount keys cached tokens by the credentials that mint them, so
// switching files or gcloud identities never reuses another's token.
func cacheAccount(cfg *config.Config) (string, error) {
	path := cfg.Credentials
	if path == "" {
		var err error
		if path, err = oauth.DefaultCredentialsFile(); err != nil {
			return "", err
		}
		if path == "" {
			return oauth.MetadataCacheAccount, nil
		}
	}
	return oauth.CacheAccount(path), nil
}
