package api

import "github.com/go-chi/chi/v5"

// SetupRoutes configures routes for the api feature.
func SetupRoutes(router chi.Router, h *Handlers) error {
	router.Route("/api", func(r chi.Router) {
		r.Get("/session", h.Session)
		r.Get("/menu", h.Menu)
	})
	return nil
}
