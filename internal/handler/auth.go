package handler

import (
	"net/http"

	"github.com/msomdec/matchpoint/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleRegister processes a JSON registration request.
// POST /auth/register
// Request:  {"email":"...","password":"...","username":"...","date_of_birth":"YYYY-MM-DD",...}
// Response: 201 {"user": {...}, "token": "...", "expires_at": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Username    string `json:"username"`
		DateOfBirth string `json:"date_of_birth"`
		Gender      string `json:"gender"`
		LookingFor  string `json:"looking_for"`
		Bio         string `json:"bio"`
		Location    string `json:"location"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		LookingFor:  req.LookingFor,
		Bio:         req.Bio,
		Location:    req.Location,
	})
	if err != nil {
		writeServiceError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponseDTO(user, token))
}

// HandleLogin processes a JSON login request.
// POST /auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"user": {...}, "token": "...", "expires_at": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponseDTO(user, token))
}

// HandleLogout revokes the session behind the bearer token.
// POST /auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization token required.")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeServiceError(w, "logout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
