package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/matchpoint/internal/domain"
)

// PhotoRepository implements domain.PhotoRepository using SQLite.
type PhotoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db.SQLDB}
}

func (r *PhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO user_photos (user_id, url, is_primary, created_at)
		 VALUES (?, ?, ?, ?)`,
		photo.UserID, photo.URL, photo.IsPrimary, now,
	)
	if err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	photo.ID = id
	photo.CreatedAt = now
	return nil
}

func (r *PhotoRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, url, is_primary, created_at
		 FROM user_photos WHERE user_id = ?
		 ORDER BY is_primary DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
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
	return photos, rows.Err()
}
