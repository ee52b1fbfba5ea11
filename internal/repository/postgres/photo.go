package postgres

import (
	"context"
	"fmt"

	"github.com/msomdec/matchpoint/internal/domain"
)

// PhotoRepository implements domain.PhotoRepository over DBTX.
type PhotoRepository struct {
	db DBTX
}

func NewPhotoRepository(db DBTX) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	query := `
		INSERT INTO user_photos (user_id, url, is_primary)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, photo.UserID, photo.URL, photo.IsPrimary).
		Scan(&photo.ID, &photo.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PhotoRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Photo, error) {
	query := `
		SELECT id, user_id, url, is_primary, created_at
		FROM user_photos
		WHERE user_id = $1
		ORDER BY is_primary DESC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		if err := rows.Scan(&p.ID, &p.UserID, &p.URL, &p.IsPrimary, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return photos, nil
}
