package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/matchpoint/internal/domain"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "session@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Session{
		ID:        "0f8c3f7e-5d2a-4c1b-9a55-3c1d2e4f5a6b",
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Sessions().Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := db.Sessions().GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.UserID)
	}
	if !got.ExpiresAt.Equal(s.ExpiresAt) {
		t.Fatalf("expected expiry %v, got %v", s.ExpiresAt, got.ExpiresAt)
	}
	if got.RevokedAt != nil {
		t.Fatal("expected new session to be unrevoked")
	}
	if !got.Active(now) {
		t.Fatal("expected session to be active")
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Sessions().GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_Revoke(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "revoke@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	s := &domain.Session{ID: "sess-1", UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := db.Sessions().Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := db.Sessions().Revoke(ctx, s.ID, now); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	// Second revoke keeps the first timestamp.
	if err := db.Sessions().Revoke(ctx, s.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("second Revoke: %v", err)
	}

	got, err := db.Sessions().GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(now) {
		t.Fatalf("expected revoked_at %v, got %v", now, got.RevokedAt)
	}
	if got.Active(now) {
		t.Fatal("expected revoked session to be inactive")
	}
}

func TestSessionRepository_Revoke_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Sessions().Revoke(context.Background(), "missing", time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createUser(t, db, "sweep@example.com")

	now := time.Now().UTC().Truncate(time.Second)
	sessions := []*domain.Session{
		{ID: "old-1", UserID: user.ID, CreatedAt: now.Add(-3 * time.Hour), ExpiresAt: now.Add(-2 * time.Hour)},
		{ID: "old-2", UserID: user.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "live", UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	}
	for _, s := range sessions {
		if err := db.Sessions().Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.ID, err)
		}
	}

	n, err := db.Sessions().DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted sessions, got %d", n)
	}

	if _, err := db.Sessions().GetByID(ctx, "live"); err != nil {
		t.Fatalf("live session should survive: %v", err)
	}
	if _, err := db.Sessions().GetByID(ctx, "old-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected old-1 to be deleted, got %v", err)
	}
}
