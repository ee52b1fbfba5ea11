package handler

import (
	"time"

	"github.com/msomdec/matchpoint/internal/domain"
	"github.com/msomdec/matchpoint/internal/service"
)

// UserDTO is the JSON representation of a user. It never carries the
// password hash.
type UserDTO struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	Username    string  `json:"username"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      string  `json:"gender"`
	LookingFor  string  `json:"looking_for"`
	Bio         string  `json:"bio"`
	Location    string  `json:"location"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toUserDTO(u *domain.User) UserDTO {
	dto := UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Gender:     u.Gender,
		LookingFor: u.LookingFor,
		Bio:        u.Bio,
		Location:   u.Location,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
	if u.DateOfBirth != nil {
		dob := u.DateOfBirth.Format(domain.DateLayout)
		dto.DateOfBirth = &dob
	}
	return dto
}

// AuthResponseDTO is returned by register and login.
type AuthResponseDTO struct {
	User      UserDTO `json:"user"`
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expires_at"`
}

func toAuthResponseDTO(u *domain.User, t *service.Token) AuthResponseDTO {
	return AuthResponseDTO{
		User:      toUserDTO(u),
		Token:     t.Value,
		ExpiresAt: t.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// PhotoDTO is the JSON representation of a profile photo.
type PhotoDTO struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"is_primary"`
	CreatedAt string `json:"created_at"`
}

// ProfileDTO is a user plus their photos, primary first.
type ProfileDTO struct {
	UserDTO
	Photos []PhotoDTO `json:"photos"`
}

func toProfileDTO(p *service.Profile) ProfileDTO {
	photos := make([]PhotoDTO, len(p.Photos))
	for i, ph := range p.Photos {
		photos[i] = PhotoDTO{
			ID:        ph.ID,
			URL:       ph.URL,
			IsPrimary: ph.IsPrimary,
			CreatedAt: ph.CreatedAt.Format(time.RFC3339),
		}
	}
	return ProfileDTO{UserDTO: toUserDTO(p.User), Photos: photos}
}
