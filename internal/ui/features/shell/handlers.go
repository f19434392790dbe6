// Package shell serves the dashboard pages of the route table.
package shell

import (
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/pages"
)

// Handlers renders route table leaves.
type Handlers struct {
	table  *routes.Table
	guard  *guard.Guard
	menu   []menu.Entry
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(table *routes.Table, g *guard.Guard, entries []menu.Entry, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{table: table, guard: g, menu: entries, logger: logger}
}

// Leaf returns the endpoint for one leaf. Redirect routes redirect before
// the guard runs; every other leaf is guarded and rendered.
func (h *Handlers) Leaf(leaf routes.Leaf) http.Handler {
	route := leaf.Route()
	if route.Redirect != "" {
		return http.RedirectHandler(route.Redirect, http.StatusFound)
	}

	status := http.StatusOK
	if route.Name == routes.NameNotFound {
		status = http.StatusNotFound
	}
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Render(w, r, leaf, pages.View{}, status)
	})
	return h.guard.Middleware(leaf)(page)
}

// Render writes the full document for leaf. Title, path, menu and user are
// filled in from the request; view supplies the rest.
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request, leaf routes.Leaf, view pages.View, status int) {
	components, err := leaf.Components()
	if err != nil {
		h.logger.Error("failed to load page", "route", leaf.Route().Name, "error", err)
		http.Error(w, "failed to load page", http.StatusInternalServerError)
		return
	}

	view.Title = leaf.Title()
	view.CurrentPath = r.URL.Path
	if store, ok := session.FromContext(r.Context()); ok {
		view.User = store.User()
		view.Menu = menu.Visible(h.menu, store.HasAccess)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	doc := pages.Document(pages.Compose(components...))
	if err := doc.Render(pages.WithView(r.Context(), view), w); err != nil {
		h.logger.Error("failed to render page", "route", leaf.Route().Name, "error", err)
	}
}

// RenderNamed renders the leaf registered under name.
func (h *Handlers) RenderNamed(w http.ResponseWriter, r *http.Request, name string, view pages.View, status int) {
	leaf, ok := h.table.Lookup(name)
	if !ok {
		h.logger.Error("unknown route", "name", name)
		http.Error(w, "unknown route", http.StatusInternalServerError)
		return
	}
	h.Render(w, r, leaf, view, status)
}
