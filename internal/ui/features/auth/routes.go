package auth

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the auth feature.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
	router.Get("/auth/logout", h.Logout)
	return nil
}
