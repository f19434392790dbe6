// Package router sets up HTTP routes for the dashboard server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/clientsession"
	apiFeature "github.com/leapstack-labs/ledgerdesk/internal/ui/features/api"
	authFeature "github.com/leapstack-labs/ledgerdesk/internal/ui/features/auth"
	liveFeature "github.com/leapstack-labs/ledgerdesk/internal/ui/features/live"
	shellFeature "github.com/leapstack-labs/ledgerdesk/internal/ui/features/shell"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/resources"
)

// Deps are the shared services the features are built from.
type Deps struct {
	Table    *routes.Table
	Guard    *guard.Guard
	Menu     []menu.Entry
	Sessions *clientsession.Manager
	Notifier *notifier.Notifier
	Metrics  *metrics.Registry
	Logger   *slog.Logger
	IsDev    bool
}

// SetupRoutes configures all routes for the dashboard server.
func SetupRoutes(router chi.Router, d Deps) error {
	// Hot reload endpoint for dev mode
	if d.IsDev {
		setupReload(router)
	}

	router.Handle("/static/*", resources.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", d.Metrics.Handler())

	var setupErr error
	router.Group(func(r chi.Router) {
		r.Use(d.Sessions.Middleware)

		sh := shellFeature.NewHandlers(d.Table, d.Guard, d.Menu, d.Logger)
		if err := authFeature.SetupRoutes(r, authFeature.NewHandlers(sh, d.Metrics, d.Logger)); err != nil {
			setupErr = err
			return
		}
		if err := apiFeature.SetupRoutes(r, apiFeature.NewHandlers(d.Menu)); err != nil {
			setupErr = err
			return
		}
		if err := liveFeature.SetupRoutes(r, liveFeature.NewHandlers(d.Notifier, d.Logger)); err != nil {
			setupErr = err
			return
		}
		// Last: the table's catch-all claims every remaining path.
		setupErr = shellFeature.SetupRoutes(r, sh)
	})
	return setupErr
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
