// Package live keeps the open tabs of a client in step with its session.
package live

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/ledgerdesk/internal/ui/clientsession"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
)

// ReloadScript is executed in a tab whose session changed elsewhere.
const ReloadScript = "window.location.reload()"

// Handlers provides HTTP handlers for the live feature.
type Handlers struct {
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(n *notifier.Notifier, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{notifier: n, logger: logger}
}

// SessionUpdates is the long-lived SSE endpoint every dashboard tab opens.
// When the client logs in or out from another tab, the tab reloads so the
// guard re-evaluates it.
func (h *Handlers) SessionUpdates(w http.ResponseWriter, r *http.Request) {
	client, ok := clientsession.FromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe(client.ID)
	defer h.notifier.Unsubscribe(client.ID, updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.ExecuteScript(ReloadScript); err != nil {
				h.logger.Debug("session update stream closed", "client", client.ID, "error", err)
				return
			}
		}
	}
}
