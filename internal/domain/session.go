package domain

import (
	"context"
	"time"
)

// Session is the server-side record behind an issued token. The token
// carries the session ID; a token is only honoured while its session
// exists, is unrevoked and unexpired.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authorize requests at t.
func (s *Session) Active(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	// Revoke marks the session revoked at the given time. Revoking an
	// already-revoked session keeps the original timestamp.
	Revoke(ctx context.Context, id string, at time.Time) error
	// DeleteExpired removes sessions that expired before the cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
