package domain

import "context"

// Database defines lifecycle operations for the underlying database and
// vends the repositories bound to it. Each implementation (SQLite,
// Postgres) owns its own migration files, so the store is swappable
// without touching the services.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error

	Users() UserRepository
	Photos() PhotoRepository
	Sessions() SessionRepository
}
