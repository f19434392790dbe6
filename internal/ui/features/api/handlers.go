// Package api exposes the session and menu as JSON for client-side code.
package api

import (
	"net/http"

	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/features/common"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// SessionResponse describes the current session.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Admin         bool       `json:"admin"`
	User          *core.User `json:"user"`
}

// Handlers provides HTTP handlers for the api feature.
type Handlers struct {
	menu []menu.Entry
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(entries []menu.Entry) *Handlers {
	return &Handlers{menu: entries}
}

// Session reports who is signed in.
func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	store, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	common.WriteJSON(w, http.StatusOK, SessionResponse{
		Authenticated: store.IsAuthenticated(),
		Admin:         store.IsAdmin(),
		User:          store.User(),
	})
}

// Menu returns the menu entries visible to the current user.
func (h *Handlers) Menu(w http.ResponseWriter, r *http.Request) {
	access := func(string) bool { return false }
	if store, ok := session.FromContext(r.Context()); ok {
		access = store.HasAccess
	}
	entries := menu.Visible(h.menu, access)
	if entries == nil {
		entries = []menu.Entry{}
	}
	common.WriteJSON(w, http.StatusOK, entries)
}
