package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/matchpoint/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Token is a signed session token handed to the client.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// RegisterInput carries the fields accepted at sign-up. Only Email and
// Password are required.
type RegisterInput struct {
	Email       string
	Password    string
	Username    string
	DateOfBirth string // YYYY-MM-DD
	Gender      string
	LookingFor  string
	Bio         string
	Location    string
}

// AuthService handles registration, login, logout and token validation.
// Tokens are HS256 JWTs whose jti names a row in the session store; a
// token stops working as soon as that row is revoked or expires.
type AuthService struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	hasher    *Hasher
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, hasher *Hasher, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register validates the input, stores a new user with a bcrypt password
// hash and issues a session token for it. Duplicate emails are detected by
// the store's unique index and reported as domain.ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, *Token, error) {
	user, err := in.user()
	if err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	session := s.newSession()
	if err := s.users.CreateWithSession(ctx, user, session); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Login verifies credentials and issues a session token. Unknown emails
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.hasher.CompareDummy(ctx, password)
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.hasher.Compare(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}

	session := s.newSession()
	session.UserID = user.ID
	token, err := s.signToken(session)
	if err != nil {
		return nil, nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	return user, token, nil
}

// Authorize resolves a token to the user ID it was issued for.
// It returns domain.ErrMissingToken for an empty token and
// domain.ErrInvalidToken when the token is malformed, forged, expired or
// revoked.
func (s *AuthService) Authorize(ctx context.Context, tokenString string) (int64, error) {
	session, err := s.session(ctx, tokenString)
	if err != nil {
		return 0, err
	}
	return session.UserID, nil
}

// Logout revokes the session behind the token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	session, err := s.session(ctx, tokenString)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(ctx, session.ID, time.Now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidToken
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes session rows that can no longer authorize
// anything.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// newSession starts a session of the configured lifetime. The caller sets
// UserID and persists it.
func (s *AuthService) newSession() *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokenTTL),
	}
}

func (s *AuthService) signToken(session *domain.Session) (*Token, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(session.UserID, 10),
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Value: signed, ExpiresAt: session.ExpiresAt}, nil
}

// session verifies the token signature and claims, then loads the live
// session it refers to.
func (s *AuthService) session(ctx context.Context, tokenString string) (*domain.Session, error) {
	if tokenString == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return nil, domain.ErrInvalidToken
	}

	session, err := s.sessions.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != userID || !session.Active(time.Now()) {
		return nil, domain.ErrInvalidToken
	}
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// user validates the input and builds the user to insert.
func (in RegisterInput) user() (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email address is not valid", domain.ErrInvalidInput)
	}

	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}

	if utf8.RuneCountInString(in.Bio) > domain.MaxBioLength {
		return nil, fmt.Errorf("%w: bio must be at most %d characters", domain.ErrInvalidInput, domain.MaxBioLength)
	}

	user := &domain.User{
		Email:      email,
		Username:   strings.TrimSpace(in.Username),
		Gender:     strings.TrimSpace(in.Gender),
		LookingFor: strings.TrimSpace(in.LookingFor),
		Bio:        in.Bio,
		Location:   strings.TrimSpace(in.Location),
	}

	if in.DateOfBirth != "" {
		dob, err := time.Parse(domain.DateLayout, in.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("%w: date of birth must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		if dob.After(time.Now()) {
			return nil, fmt.Errorf("%w: date of birth is in the future", domain.ErrInvalidInput)
		}
		user.DateOfBirth = &dob
	}

	return user, nil
}

// RunSessionJanitor purges expired sessions every interval until ctx is
// done.
func (s *AuthService) RunSessionJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("purge expired sessions", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Info("purged expired sessions", "count", n)
			}
		}
	}
}
