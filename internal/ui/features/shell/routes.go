package shell

import "github.com/go-chi/chi/v5"

// SetupRoutes mounts every leaf of the route table.
func SetupRoutes(router chi.Router, h *Handlers) error {
	h.table.Mount(router, h.Leaf)
	return nil
}
