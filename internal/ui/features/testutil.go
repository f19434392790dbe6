// Package features provides shared test utilities for UI feature tests.
package features

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/internal/authstub"
	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/storage"
	"github.com/leapstack-labs/ledgerdesk/internal/testutil"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/clientsession"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// Test accounts known to the fixture's login backend.
const (
	AdminUser     = "alice"
	AdminPassword = "correct"
	StaffUser     = "bob"
	StaffPassword = "hunter2"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Table    *routes.Table
	Guard    *guard.Guard
	Menu     []menu.Entry
	Metrics  *metrics.Registry
	Notifier *notifier.Notifier
	Backend  storage.Backend
	Sessions *clientsession.Manager
	AuthURL  string
}

// SetupTestFixture wires the route table, guard and client sessions against
// an in-memory backend and a stub login endpoint with two accounts.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)

	admin, err := authstub.NewAccount(core.User{ID: "1", Username: AdminUser, Name: "Alice", Role: core.RoleAdmin}, AdminPassword)
	require.NoError(t, err)
	staff, err := authstub.NewAccount(core.User{ID: "2", Username: StaffUser, Name: "Bob", Role: core.RoleStaff,
		Permissions: core.NewPermissionSet("rekon_settings")}, StaffPassword)
	require.NoError(t, err)
	stub := httptest.NewServer(authstub.New([]authstub.Account{admin, staff}, logger).Handler())
	t.Cleanup(stub.Close)

	table, err := routes.NewTable(routes.Definitions())
	require.NoError(t, err)

	m := metrics.New()
	n := notifier.New()
	backend := storage.NewMemory()
	t.Cleanup(func() { _ = backend.Close() })

	return &TestFixture{
		Table:    table,
		Guard:    guard.New(guard.DefaultPolicy(), m, logger),
		Menu:     menu.Default(),
		Metrics:  m,
		Notifier: n,
		Backend:  backend,
		Sessions: clientsession.New(clientsession.Config{
			Cookies:  NewTestSessionStore(),
			Backend:  backend,
			Auth:     auth.NewClient(auth.Config{BaseURL: stub.URL, Logger: logger}),
			Notifier: n,
			Logger:   logger,
		}),
		AuthURL: stub.URL,
	}
}

// NewTestSessionStore creates a cookie store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// Browser replays cookies across requests like a browser tab would.
type Browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

// NewBrowser creates a Browser talking to h.
func NewBrowser(t *testing.T, h http.Handler) *Browser {
	return &Browser{t: t, handler: h, cookies: make(map[string]*http.Cookie)}
}

// Do sends req with the stored cookies and keeps the cookies of the response.
func (b *Browser) Do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

// Get issues a GET request.
func (b *Browser) Get(target string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.Do(httptest.NewRequest(http.MethodGet, target, nil))
}

// PostForm issues a form POST.
func (b *Browser) PostForm(target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.Do(req)
}

// PostJSON issues a JSON POST.
func (b *Browser) PostJSON(target, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.Do(req)
}

// Login signs in through the login endpoint and fails the test otherwise.
func (b *Browser) Login(username, password string) {
	b.t.Helper()
	rec := b.PostForm("/auth/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}
