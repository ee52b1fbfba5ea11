package domain

import (
	"context"
	"time"
)

// Photo is a picture attached to a user's profile.
type Photo struct {
	ID        int64
	UserID    int64
	URL       string // Absolute URL, or an s3://bucket/key object reference
	IsPrimary bool
	CreatedAt time.Time
}

// PhotoRepository handles photo metadata persistence.
type PhotoRepository interface {
	Create(ctx context.Context, photo *Photo) error
	// ListByUser returns the user's photos with the primary photo first,
	// the rest in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]Photo, error)
}
