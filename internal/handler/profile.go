package handler

import (
	"net/http"

	"github.com/msomdec/matchpoint/internal/service"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// HandleGetProfile returns the authenticated user's profile.
// GET /profile
// Response: 200 {"id":..., "email":"...", ..., "photos":[...]}
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required.")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "get profile", err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileDTO(profile))
}
