package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/matchpoint/internal/domain"
)

// SessionRepository implements domain.SessionRepository using SQLite.
// All timestamps are stored in UTC so that expires_at compares correctly
// as text.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.SQLDB}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return insertSession(ctx, r.db, session)
}

func insertSession(ctx context.Context, q execer, session *domain.Session) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID, session.UserID, session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s := &domain.Session{}
	var revokedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return s, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return result.RowsAffected()
}
