package credstore

import (
	"context"
	"database/sql"
	"fmt"
)

// DefaultTable is the token table name.
const DefaultTable = "gsutil_tokens"

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

type TableMigration struct {
	TableName string
	Up        func(ctx context.Context, db *sql.DB) error
	Down      func(ctx context.Context, db *sql.DB) error
}

func getTableMigrations(table string) []TableMigration {
	return []TableMigration{
		{
			TableName: table,
			Up:        createTokenTable(table),
			Down:      dropTable(table),
		},
	}
}

// Migrate creates the token table and its indexes if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	for _, migration := range getTableMigrations(table) {
		if err := migration.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate up %s: %w", migration.TableName, err)
		}
	}
	return nil
}

// DropTables removes the token table.
func DropTables(ctx context.Context, db *sql.DB, table string) error {
	migrations := getTableMigrations(table)
	for i := len(migrations) - 1; i >= 0; i-- {
		if err := migrations[i].Down(ctx, db); err != nil {
			return fmt.Errorf("migrate down %s: %w", migrations[i].TableName, err)
		}
	}
	return nil
}

func createTokenTable(table string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		quotedTable := quoteIdentifier(table)
		indexExpiry := quoteIdentifier(fmt.Sprintf("idx_%s_expiry", table))

		createTableSQL := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				account TEXT NOT NULL,
				scope_hash TEXT NOT NULL,
				access_token TEXT NOT NULL,
				token_type TEXT NOT NULL,
				expiry TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (account, scope_hash)
			)
		`, quotedTable)

		if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
			return fmt.Errorf("create table: %w", err)
		}

		indexSQL := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s ON %s (expiry)
		`, indexExpiry, quotedTable)

		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return fmt.Errorf("create index expiry: %w", err)
		}

		return nil
	}
}

func dropTable(table string) func(context.Context, *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(table)))
		return err
	}
}
