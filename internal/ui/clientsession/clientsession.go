// Package clientsession ties each browser to its session store.
//
// A browser is identified by a signed gorilla session cookie. Session values
// live either inside that cookie or in a storage backend namespace named by
// the client id kept in the cookie.
package clientsession

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/ledgerdesk/internal/session"
	"github.com/leapstack-labs/ledgerdesk/internal/storage"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// CookieName is the name of the client cookie.
const CookieName = "ledgerdesk"

const clientIDKey = "cid"

// Config configures a Manager.
type Config struct {
	Cookies sessions.Store
	// Backend holds session values. Nil keeps them in the cookie.
	Backend  storage.Backend
	Auth     core.Authenticator
	Options  session.Options
	Notifier *notifier.Notifier
	Logger   *slog.Logger
}

// Client is the per-request view of one browser.
type Client struct {
	ID    string
	Store *session.Store
	// Nav records where the session asked to navigate.
	Nav *session.Recorder
}

type clientKey struct{}

// FromContext returns the client of the current request.
func FromContext(ctx context.Context) (*Client, bool) {
	c, ok := ctx.Value(clientKey{}).(*Client)
	return c, ok
}

// Manager restores client sessions for incoming requests.
type Manager struct {
	cookies  sessions.Store
	backend  storage.Backend
	auth     core.Authenticator
	opts     session.Options
	notifier *notifier.Notifier
	logger   *slog.Logger
}

// New creates a Manager.
func New(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := cfg.Notifier
	if n == nil {
		n = notifier.New()
	}
	opts := cfg.Options
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Manager{
		cookies:  cfg.Cookies,
		backend:  cfg.Backend,
		auth:     cfg.Auth,
		opts:     opts,
		notifier: n,
		logger:   logger,
	}
}

// Middleware restores the session of the requesting client and stores it in
// the request context. It sets the client cookie on first contact.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.cookies.Get(r, CookieName)
		if err != nil {
			// A cookie signed with an old secret; start over with a fresh one.
			m.logger.Warn("discarding unreadable session cookie", "error", err)
		}

		id, _ := sess.Values[clientIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[clientIDKey] = id
			if err := sess.Save(r, w); err != nil {
				m.logger.Error("failed to save session cookie", "error", err)
			}
		}

		var st core.Storage
		if m.backend == nil {
			st = &cookieStorage{sess: sess, r: r, w: w}
		} else {
			st = m.backend.Namespace(id)
		}

		nav := &session.Recorder{}
		opts := m.opts
		opts.Logger = m.opts.Logger.With("client", id)
		opts.OnChange = func(context.Context, session.Change) {
			m.notifier.Publish(id)
		}

		client := &Client{
			ID:    id,
			Store: session.Restore(r.Context(), st, m.auth, nav, opts),
			Nav:   nav,
		}
		ctx := session.NewContext(r.Context(), client.Store)
		ctx = context.WithValue(ctx, clientKey{}, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
