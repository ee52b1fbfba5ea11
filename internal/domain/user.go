package domain

import (
	"context"
	"time"
)

// User represents a registered member of the app.
// PasswordHash never leaves the service layer; handlers render users
// through a DTO that has no field for it.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Username     string
	DateOfBirth  *time.Time
	Gender       string
	LookingFor   string
	Bio          string
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DateLayout is the wire and storage format of User.DateOfBirth.
const DateLayout = "2006-01-02"

// MaxBioLength bounds User.Bio, counted in runes.
const MaxBioLength = 500

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts the user and sets ID, CreatedAt and UpdatedAt.
	// Returns ErrDuplicateEmail when the email is already taken; the
	// check is enforced by the store's unique index.
	Create(ctx context.Context, user *User) error
	// CreateWithSession inserts the user and its first session atomically
	// and sets session.UserID. If either insert fails neither row exists.
	CreateWithSession(ctx context.Context, user *User, session *Session) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
