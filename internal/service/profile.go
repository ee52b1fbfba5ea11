package service

import (
	"context"
	"fmt"

	"github.com/msomdec/matchpoint/internal/domain"
)

// PhotoURLResolver turns a stored photo reference into a URL the client
// can fetch.
type PhotoURLResolver interface {
	ResolveURL(ctx context.Context, ref string) (string, error)
}

// Profile is a user together with their photos, primary first.
type Profile struct {
	User   *domain.User
	Photos []domain.Photo
}

// ProfileService serves the profile read path.
type ProfileService struct {
	users    domain.UserRepository
	photos   domain.PhotoRepository
	resolver PhotoURLResolver
}

// NewProfileService creates a ProfileService. resolver may be nil, in
// which case photo references are returned as stored.
func NewProfileService(users domain.UserRepository, photos domain.PhotoRepository, resolver PhotoURLResolver) *ProfileService {
	return &ProfileService{users: users, photos: photos, resolver: resolver}
}

// GetProfile returns the user's profile, or domain.ErrNotFound if the user
// does not exist.
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	photos, err := s.photos.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}

	if s.resolver != nil {
		for i := range photos {
			url, err := s.resolver.ResolveURL(ctx, photos[i].URL)
			if err != nil {
				return nil, fmt.Errorf("resolve photo %d: %w", photos[i].ID, err)
			}
			photos[i].URL = url
		}
	}

	return &Profile{User: user, Photos: photos}, nil
}
