package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sagarc03/gsutil/oauth"
)

// timeFormat is fixed-width so that stored expiries compare lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed token store.
type Store struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTable overrides DefaultTable.
func WithTable(table string) Option {
	return func(s *Store) {
		s.table = table
	}
}

// WithClock overrides the time source used to skip and prune expired rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the database at dsn, creating parent directories for file
// paths, and runs migrations.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("create token cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// ":memory:" databases exist per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, table: DefaultTable, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := Migrate(ctx, db, s.table); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Cache returns an oauth.Cache scoped to account.
func (s *Store) Cache(account string) oauth.Cache {
	return &accountCache{store: s, account: account}
}

// Load returns the stored token for account and scopeHash. Expired tokens
// are reported as missing.
func (s *Store) Load(ctx context.Context, account, scopeHash string) (*oauth2.Token, error) {
	query := fmt.Sprintf(`
		SELECT access_token, token_type, expiry
		FROM %s
		WHERE account = ? AND scope_hash = ?
	`, quoteIdentifier(s.table))

	var accessToken, tokenType, expiryStr string
	err := s.db.QueryRowContext(ctx, query, account, scopeHash).Scan(&accessToken, &tokenType, &expiryStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	expiry, err := time.Parse(timeFormat, expiryStr)
	if err != nil {
		return nil, fmt.Errorf("parse expiry: %w", err)
	}
	if !s.now().Before(expiry) {
		return nil, nil
	}

	return &oauth2.Token{AccessToken: accessToken, TokenType: tokenType, Expiry: expiry}, nil
}

// Save upserts tok for account and scopeHash.
func (s *Store) Save(ctx context.Context, account, scopeHash string, tok *oauth2.Token) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (account, scope_hash, access_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account, scope_hash) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`, quoteIdentifier(s.table))

	_, err := s.db.ExecContext(ctx, query,
		account,
		scopeHash,
		tok.AccessToken,
		tok.TokenType,
		tok.Expiry.UTC().Format(timeFormat),
		s.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Prune deletes expired tokens and returns how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expiry <= ?`, quoteIdentifier(s.table))

	res, err := s.db.ExecContext(ctx, query, s.now().UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("prune tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune tokens: %w", err)
	}
	return n, nil
}

type accountCache struct {
	store   *Store
	account string
}

// Get implements oauth.Cache. Read failures are logged and treated as a miss.
func (c *accountCache) Get(ctx context.Context, scopeHash string) (*oauth2.Token, bool) {
	tok, err := c.store.Load(ctx, c.account, scopeHash)
	if err != nil {
		slog.Warn("token cache read failed", "err", err)
		return nil, false
	}
	return tok, tok != nil
}

// Put implements oauth.Cache.
func (c *accountCache) Put(ctx context.Context, scopeHash string, tok *oauth2.Token) error {
	return c.store.Save(ctx, c.account, scopeHash, tok)
}
