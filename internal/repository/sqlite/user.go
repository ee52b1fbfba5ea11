package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/matchpoint/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SQLDB}
}

const userColumns = `id, email, password_hash, username, date_of_birth, gender,
	looking_for, bio, location, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return insertUser(ctx, r.db, user)
}

// CreateWithSession inserts the user and its first session in one
// transaction.
func (r *UserRepository) CreateWithSession(ctx context.Context, user *domain.User, session *domain.Session) error {
	return withTx(ctx, r.db, func(ctx context.Context, tx execer) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		session.UserID = user.ID
		return insertSession(ctx, tx, session)
	})
}

func insertUser(ctx context.Context, q execer, user *domain.User) error {
	now := time.Now().UTC()

	var dob sql.NullString
	if user.DateOfBirth != nil {
		dob = nullString(user.DateOfBirth.Format(domain.DateLayout))
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, username, date_of_birth, gender,
			looking_for, bio, location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.PasswordHash, nullString(user.Username), dob,
		nullString(user.Gender), nullString(user.LookingFor), nullString(user.Bio),
		nullString(user.Location), now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user                                             domain.User
		username, dob, gender, lookingFor, bio, location sql.NullString
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &username, &dob,
		&gender, &lookingFor, &bio, &location, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.Username = username.String
	user.Gender = gender.String
	user.LookingFor = lookingFor.String
	user.Bio = bio.String
	user.Location = location.String
	if dob.Valid {
		t, err := time.Parse(domain.DateLayout, dob.String)
		if err != nil {
			return nil, fmt.Errorf("parse date_of_birth %q: %w", dob.String, err)
		}
		user.DateOfBirth = &t
	}
	return &user, nil
}
