package handler_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/matchpoint/internal/repository/sqlite"
	"github.com/msomdec/matchpoint/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	db       *sqlite.DB
	auth     *service.AuthService
	profiles *service.ProfileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &testEnv{
		db:       db,
		auth:     service.NewAuthService(db.Users(), db.Sessions(), service.NewHasher(4, 4), testJWTSecret, time.Hour),
		profiles: service.NewProfileService(db.Users(), db.Photos(), nil),
	}
}

// registerToken registers a user and returns a fresh token for them.
func (e *testEnv) registerToken(t *testing.T, email, password string) (int64, string) {
	t.Helper()
	user, token, err := e.auth.Register(context.Background(), service.RegisterInput{Email: email, Password: password})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user.ID, token.Value
}
