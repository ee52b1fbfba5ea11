// Package postgres implements the credential store on PostgreSQL through
// database/sql and the pgx stdlib driver. Schema migrations are embedded
// and applied with goose.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/msomdec/matchpoint/internal/domain"
	"github.com/msomdec/matchpoint/internal/repository/postgres/migrations"
)

// uniqueViolation is the SQLSTATE raised for unique index conflicts.
const uniqueViolation = "23505"

// DBTX is the subset of database/sql used by the repositories.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(ctx, tx)
}

// DB wraps a pooled PostgreSQL connection and vends the repositories bound
// to it. It implements domain.Database.
type DB struct {
	sqlDB *sql.DB

	users    *UserRepository
	photos   *PhotoRepository
	sessions *SessionRepository
}

// New opens a connection pool for dsn capped at poolSize connections and
// verifies connectivity.
func New(ctx context.Context, dsn string, poolSize int) (*DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(poolSize)
	sqlDB.SetMaxIdleConns(poolSize)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return wrap(sqlDB), nil
}

func wrap(sqlDB *sql.DB) *DB {
	return &DB{
		sqlDB:    sqlDB,
		users:    NewUserRepository(sqlDB),
		photos:   NewPhotoRepository(sqlDB),
		sessions: NewSessionRepository(sqlDB),
	}
}

// gooseUp is a seam for testing migrations without a live server.
var gooseUp = func(ctx context.Context, db *sql.DB) ([]*goose.MigrationResult, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider.Up(ctx)
}

// Migrate applies all pending embedded migrations.
func (db *DB) Migrate(ctx context.Context) error {
	results, err := gooseUp(ctx, db.sqlDB)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("migration applied", "file", r.Source.Path, "duration", r.Duration)
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.sqlDB.Close()
}

func (db *DB) Users() domain.UserRepository       { return db.users }
func (db *DB) Photos() domain.PhotoRepository     { return db.photos }
func (db *DB) Sessions() domain.SessionRepository { return db.sessions }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
