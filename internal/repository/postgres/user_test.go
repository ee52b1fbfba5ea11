package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/matchpoint/internal/domain"
)

const (
	insertUserQuery = `(?s)^\s*INSERT\s+INTO\s+users\s*\(email,\s*password_hash,.*\)\s*VALUES\s*\(\$1,.*\$8\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	userByIDQuery   = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	userByEmail     = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
)

var userRowColumns = []string{
	"id", "email", "password_hash", "username", "date_of_birth", "gender",
	"looking_for", "bio", "location", "created_at", "updated_at",
}

func TestUserCreate_Success(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(insertUserQuery).
		WithArgs("alice@example.com", "hash", "alice", nil, nil, nil, nil, "Paris").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(42), now, now))

	u := &domain.User{Email: "alice@example.com", PasswordHash: "hash", Username: "alice", Location: "Paris"}
	require.NoError(t, repo.Create(context.Background(), u))
	require.Equal(t, int64(42), u.ID)
	require.True(t, u.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	mock.ExpectQuery(insertUserQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &domain.User{Email: "dup@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserCreate_DBError(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	mock.ExpectQuery(insertUserQuery).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.User{Email: "a@example.com", PasswordHash: "h"})
	require.ErrorContains(t, err, "db error: db down")
	require.NotErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserGetByID_Found(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	dob := time.Date(1992, time.July, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery(userByIDQuery).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(7), "bob@example.com", "hash", "bob", dob, "male", "female", "Hi", nil, now, now))

	u, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", u.Email)
	require.Equal(t, "bob", u.Username)
	require.Equal(t, "female", u.LookingFor)
	require.Empty(t, u.Location)
	require.NotNil(t, u.DateOfBirth)
	require.True(t, u.DateOfBirth.Equal(dob))
}

func TestUserGetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	mock.ExpectQuery(userByIDQuery).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserGetByEmail_Found(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(userByEmail).
		WithArgs("carol@example.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(3), "carol@example.com", "hash", nil, nil, nil, nil, nil, nil, now, now))

	u, err := repo.GetByEmail(context.Background(), "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.Nil(t, u.DateOfBirth)
}

func TestUserGetByEmail_DBError(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	mock.ExpectQuery(userByEmail).WithArgs("x@example.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "x@example.com")
	require.ErrorContains(t, err, "db error: db err")
}

func TestUserCreateWithSession_Commits(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectExec(insertSessionQuery).
		WithArgs(sessionID, int64(7), now, now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u := &domain.User{Email: "tx@example.com", PasswordHash: "h"}
	s := &domain.Session{ID: sessionID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.CreateWithSession(context.Background(), u, s))
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, int64(7), s.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithSession_RollsBackWhenSessionFails(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	mock.ExpectExec(insertSessionQuery).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.CreateWithSession(context.Background(),
		&domain.User{Email: "tx@example.com", PasswordHash: "h"},
		&domain.Session{ID: sessionID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithSession_DuplicateEmailRollsBack(t *testing.T) {
	db, mock := newMockDB(t, false)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(insertUserQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	mock.ExpectRollback()

	err := repo.CreateWithSession(context.Background(),
		&domain.User{Email: "dup@example.com", PasswordHash: "h"},
		&domain.Session{ID: sessionID})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}
