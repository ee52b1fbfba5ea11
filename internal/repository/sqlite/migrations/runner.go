package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// FS holds the SQLite schema migrations, applied in filename order.
//
//go:embed *.sql
var FS embed.FS

// Run applies all unapplied migrations from the embedded FS to the database.
// Applied versions are tracked by goose in the goose_db_version table.
func Run(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		slog.Info("migration applied", "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}
