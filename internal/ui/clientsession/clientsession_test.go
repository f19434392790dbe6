package clientsession

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/storage"
	"github.com/leapstack-labs/ledgerdesk/internal/testutil"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

type authFunc func(ctx context.Context, username, password string) core.LoginResult

func (f authFunc) Login(ctx context.Context, username, password string) core.LoginResult {
	return f(ctx, username, password)
}

var alice = authFunc(func(_ context.Context, username, password string) core.LoginResult {
	if username == "alice" && password == "correct" {
		return core.LoginSucceeded(core.User{Username: "alice", Role: core.RoleAdmin})
	}
	return core.LoginFailed("Invalid credentials")
})

// newHandler serves /login, /logout and /whoami on top of the middleware.
func newHandler(t *testing.T, backend storage.Backend, n *notifier.Notifier) http.Handler {
	t.Helper()
	m := New(Config{
		Cookies:  sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!")),
		Backend:  backend,
		Auth:     alice,
		Notifier: n,
		Logger:   testutil.NewTestLogger(t),
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		c, _ := FromContext(r.Context())
		res := c.Store.Login(r.Context(), r.FormValue("u"), r.FormValue("p"))
		if !res.Success() {
			http.Error(w, res.Message(), http.StatusUnauthorized)
			return
		}
		target, _ := c.Nav.Target()
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		c, _ := FromContext(r.Context())
		require.NoError(t, c.Store.Logout(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/whoami", func(w http.ResponseWriter, r *http.Request) {
		c, _ := FromContext(r.Context())
		w.Header().Set("X-Client", c.ID)
		if u := c.Store.User(); u != nil {
			_, _ = w.Write([]byte(u.Username))
		}
	})
	return m.Middleware(mux)
}

// browser replays the latest client cookie like a browser would.
type browser struct {
	h      http.Handler
	cookie *http.Cookie
}

func (b *browser) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			b.cookie = c
		}
	}
	return rec
}

func TestMiddleware_Backends(t *testing.T) {
	backends := map[string]func(t *testing.T) storage.Backend{
		"cookie": func(*testing.T) storage.Backend { return nil },
		"memory": func(*testing.T) storage.Backend { return storage.NewMemory() },
		"sqlite": func(t *testing.T) storage.Backend {
			db, err := storage.OpenSQLite(":memory:", testutil.NewTestLogger(t))
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			return db
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			b := &browser{h: newHandler(t, open(t), nil)}

			rec := b.do(http.MethodGet, "/whoami")
			require.NotNil(t, b.cookie, "first contact sets the client cookie")
			id := rec.Header().Get("X-Client")
			require.NotEmpty(t, id)
			assert.Empty(t, rec.Body.String())

			rec = b.do(http.MethodPost, "/login?u=alice&p=correct")
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))

			rec = b.do(http.MethodGet, "/whoami")
			assert.Equal(t, id, rec.Header().Get("X-Client"), "client id is stable")
			assert.Equal(t, "alice", rec.Body.String())

			rec = b.do(http.MethodPost, "/logout")
			assert.Equal(t, http.StatusNoContent, rec.Code)

			rec = b.do(http.MethodGet, "/whoami")
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestMiddleware_FailedLogin(t *testing.T) {
	b := &browser{h: newHandler(t, storage.NewMemory(), nil)}

	rec := b.do(http.MethodPost, "/login?u=bob&p=wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = b.do(http.MethodGet, "/whoami")
	assert.Empty(t, rec.Body.String())
}

func TestMiddleware_SeparateClients(t *testing.T) {
	h := newHandler(t, storage.NewMemory(), nil)
	a, b := &browser{h: h}, &browser{h: h}

	a.do(http.MethodPost, "/login?u=alice&p=correct")
	assert.Equal(t, "alice", a.do(http.MethodGet, "/whoami").Body.String())
	assert.Empty(t, b.do(http.MethodGet, "/whoami").Body.String())
}

func TestMiddleware_ForeignCookie(t *testing.T) {
	h := newHandler(t, storage.NewMemory(), nil)
	b := &browser{h: h, cookie: &http.Cookie{Name: CookieName, Value: "tampered"}}

	rec := b.do(http.MethodGet, "/whoami")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Client"))
}

func TestMiddleware_PublishesChanges(t *testing.T) {
	n := notifier.New()
	b := &browser{h: newHandler(t, storage.NewMemory(), n)}

	id := b.do(http.MethodGet, "/whoami").Header().Get("X-Client")
	updates := n.Subscribe(id)
	defer n.Unsubscribe(id, updates)

	b.do(http.MethodPost, "/login?u=alice&p=correct")

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("login did not notify the client's tabs")
	}
}
