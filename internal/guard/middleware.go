package guard

import (
	"net/http"

	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
)

// Middleware guards every request to leaf. The request context must carry
// a session store.
func (g *Guard) Middleware(leaf routes.Leaf) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := session.FromContext(r.Context())
			if !ok {
				g.Logger.Error("guarded request without session", "path", r.URL.Path)
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			dest := Destination{
				Path:     r.URL.Path,
				FullPath: r.URL.RequestURI(),
				Chain:    leaf.Chain,
			}
			if d := g.Check(r.Context(), store, dest); d.Action == ActionRedirect {
				http.Redirect(w, r, d.Target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
