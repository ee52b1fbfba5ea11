package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// Hasher runs bcrypt work on a bounded pool so that a burst of logins
// cannot monopolise every CPU. Callers block until a slot is free or
// their context is done.
type Hasher struct {
	cost  int
	slots *semaphore.Weighted

	// dummyHash is compared against for unknown accounts.
	dummyHash []byte
}

// NewHasher creates a Hasher using the given bcrypt cost and at most
// workers concurrent hash operations.
func NewHasher(cost, workers int) *Hasher {
	if workers < 1 {
		workers = 1
	}
	h := &Hasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
	// An invalid cost leaves dummyHash nil; Hash reports the same error.
	h.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return h
}

// Hash derives a salted bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("acquire hasher: %w", err)
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare verifies password against a stored bcrypt hash in constant time.
// A mismatch returns bcrypt.ErrMismatchedHashAndPassword.
func (h *Hasher) Compare(ctx context.Context, hash, password string) error {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire hasher: %w", err)
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// CompareDummy spends the same effort as Compare against a throwaway hash.
// Login calls it for unknown emails so response timing does not reveal
// whether an account exists.
func (h *Hasher) CompareDummy(ctx context.Context, password string) {
	if h.dummyHash == nil {
		return
	}
	_ = h.Compare(ctx, string(h.dummyHash), password)
}
