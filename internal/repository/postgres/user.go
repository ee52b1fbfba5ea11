package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/matchpoint/internal/domain"
)

// UserRepository implements domain.UserRepository over DBTX.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, username, date_of_birth, gender, looking_for, bio, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	var dob sql.NullTime
	if user.DateOfBirth != nil {
		dob = sql.NullTime{Time: *user.DateOfBirth, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, nullString(user.Username), dob,
		nullString(user.Gender), nullString(user.LookingFor), nullString(user.Bio),
		nullString(user.Location),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CreateWithSession inserts the user and its first session in one
// transaction. When the repository is already bound to a transaction the
// inserts join it.
func (r *UserRepository) CreateWithSession(ctx context.Context, user *domain.User, session *domain.Session) error {
	insert := func(ctx context.Context, tx DBTX) error {
		if err := NewUserRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		session.UserID = user.ID
		return NewSessionRepository(tx).Create(ctx, session)
	}

	sqlDB, ok := r.db.(*sql.DB)
	if !ok {
		return insert(ctx, r.db)
	}
	return WithTx(ctx, sqlDB, nil, insert)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, username, date_of_birth, gender, looking_for, bio, location, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.get(ctx, query, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, username, date_of_birth, gender, looking_for, bio, location, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return r.get(ctx, query, email)
}

func (r *UserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user                                        domain.User
		username, gender, lookingFor, bio, location sql.NullString
		dob                                         sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &username, &dob, &gender,
		&lookingFor, &bio, &location, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Username = username.String
	user.Gender = gender.String
	user.LookingFor = lookingFor.String
	user.Bio = bio.String
	user.Location = location.String
	if dob.Valid {
		user.DateOfBirth = &dob.Time
	}
	return &user, nil
}
