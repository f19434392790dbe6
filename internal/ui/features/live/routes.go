package live

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the live feature.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Get("/session/updates", h.SessionUpdates)
	return nil
}
