package handler

import (
	"net/http"

	"github.com/msomdec/matchpoint/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. A nil limiter
// disables rate limiting of the auth endpoints.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, profiles *service.ProfileService, db Pinger, limiter Limiter) {
	authHandler := NewAuthHandler(auth)
	profileHandler := NewProfileHandler(profiles)

	limited := func(h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return RateLimit(limiter, h)
	}

	mux.Handle("POST /auth/register", limited(authHandler.HandleRegister))
	mux.Handle("POST /auth/login", limited(authHandler.HandleLogin))
	mux.HandleFunc("POST /auth/logout", authHandler.HandleLogout)

	mux.Handle("GET /profile", RequireAuth(auth, http.HandlerFunc(profileHandler.HandleGetProfile)))

	mux.HandleFunc("GET /health", HandleHealth(db))
}

// Wrap applies the global middleware chain to h.
func Wrap(h http.Handler, allowedOrigins []string) http.Handler {
	return SecurityHeaders(CORS(allowedOrigins, RequestLogger(Recover(h))))
}
