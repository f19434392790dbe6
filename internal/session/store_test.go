package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/internal/storage"
	"github.com/leapstack-labs/ledgerdesk/internal/testutil"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

type authFunc func(ctx context.Context, username, password string) core.LoginResult

func (f authFunc) Login(ctx context.Context, username, password string) core.LoginResult {
	return f(ctx, username, password)
}

func succeedAs(u core.User) core.Authenticator {
	return authFunc(func(context.Context, string, string) core.LoginResult {
		return core.LoginSucceeded(u)
	})
}

func failWith(msg string) core.Authenticator {
	return authFunc(func(context.Context, string, string) core.LoginResult {
		return core.LoginFailed(msg)
	})
}

// flakyStorage fails writes of one key.
type flakyStorage struct {
	core.Storage
	failKey string
}

var errDiskFull = errors.New("disk full")

func (f *flakyStorage) SetItem(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errDiskFull
	}
	return f.Storage.SetItem(ctx, key, value)
}

type harness struct {
	storage core.Storage
	nav     *Recorder
}

func newHarness() *harness {
	return &harness{storage: storage.NewMemory().Namespace("test"), nav: &Recorder{}}
}

func (h *harness) restore(t *testing.T, a core.Authenticator) *Store {
	t.Helper()
	return Restore(context.Background(), h.storage, a, h.nav, Options{Logger: testutil.NewTestLogger(t)})
}

func (h *harness) get(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := h.storage.GetItem(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestRestore_Empty(t *testing.T) {
	s := newHarness().restore(t, nil)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.HasUser())
	assert.Nil(t, s.User())
	assert.False(t, s.IsAdmin())
	assert.False(t, s.HasAccess("invoice"))
	assert.Empty(t, s.ReturnURL())
}

func TestRestore_StoredSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	require.NoError(t, h.storage.SetItem(ctx, core.StorageKeyUser, `{"id":"7","username":"carol","role":"staff","permissions":["invoice"]}`))
	require.NoError(t, h.storage.SetItem(ctx, core.StorageKeyToken, TokenLoggedIn))
	require.NoError(t, h.storage.SetItem(ctx, core.StorageKeyReturnURL, "/laporan"))

	s := h.restore(t, nil)
	assert.True(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, "carol", s.User().Username)
	assert.True(t, s.HasAccess("invoice"))
	assert.False(t, s.HasAccess("users"))
	assert.Equal(t, "/laporan", s.ReturnURL())
}

func TestRestore_MalformedUser(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "truncated", raw: `{"username":"al`},
		{name: "not json", raw: "alice"},
		{name: "wrong shape", raw: `[1,2,3]`},
		{name: "null", raw: "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			require.NoError(t, h.storage.SetItem(context.Background(), core.StorageKeyUser, tt.raw))

			s := h.restore(t, nil)
			assert.False(t, s.HasUser())
			assert.False(t, s.IsAuthenticated())
			assert.False(t, s.IsAdmin())
		})
	}
}

func TestRestore_TokenWithoutUser(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.storage.SetItem(context.Background(), core.StorageKeyToken, TokenLoggedIn))

	s := h.restore(t, nil)
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.HasUser())
}

func TestLogin_Success(t *testing.T) {
	h := newHarness()
	user := core.User{ID: "1", Username: "alice", Role: core.RoleAdmin}
	s := h.restore(t, succeedAs(user))

	res := s.Login(context.Background(), "alice", "correct")
	require.True(t, res.Success())

	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.IsAdmin())
	assert.True(t, s.HasAccess("anything"))

	raw, ok := h.get(t, core.StorageKeyUser)
	require.True(t, ok)
	var stored core.User
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, user.Username, stored.Username)

	tok, ok := h.get(t, core.StorageKeyToken)
	require.True(t, ok)
	assert.Equal(t, TokenLoggedIn, tok)

	target, navigated := h.nav.Target()
	assert.True(t, navigated)
	assert.Equal(t, DefaultLandingPath, target)
}

func TestLogin_ResumesReturnURL(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := h.restore(t, succeedAs(core.User{Username: "bob", Role: core.RoleStaff}))

	require.NoError(t, s.SetReturnURL(ctx, "/invoice?page=2"))

	// A later request restores the same client and logs in.
	s = h.restore(t, succeedAs(core.User{Username: "bob", Role: core.RoleStaff}))
	assert.Equal(t, "/invoice?page=2", s.ReturnURL())

	require.True(t, s.Login(ctx, "bob", "pw").Success())
	target, _ := h.nav.Target()
	assert.Equal(t, "/invoice?page=2", target)

	assert.Empty(t, s.ReturnURL())
	_, ok := h.get(t, core.StorageKeyReturnURL)
	assert.False(t, ok, "return path is consumed")

	// The next login lands on the default page.
	require.NoError(t, s.Logout(ctx))
	require.True(t, s.Login(ctx, "bob", "pw").Success())
	target, _ = h.nav.Target()
	assert.Equal(t, DefaultLandingPath, target)
}

func TestLogin_Failure(t *testing.T) {
	h := newHarness()
	s := h.restore(t, failWith("Invalid credentials"))

	res := s.Login(context.Background(), "bob", "wrong")
	assert.False(t, res.Success())
	assert.Equal(t, "Invalid credentials", res.Message())

	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.HasUser())
	_, ok := h.get(t, core.StorageKeyUser)
	assert.False(t, ok)
	_, ok = h.get(t, core.StorageKeyToken)
	assert.False(t, ok)

	_, navigated := h.nav.Target()
	assert.False(t, navigated)
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	first := h.restore(t, succeedAs(core.User{Username: "carol", Role: core.RoleApprover}))
	require.True(t, first.Login(ctx, "carol", "pw").Success())

	s := h.restore(t, failWith("Login failed"))
	assert.False(t, s.Login(ctx, "carol", "typo").Success())
	require.NotNil(t, s.User())
	assert.Equal(t, "carol", s.User().Username)
	assert.True(t, s.IsAuthenticated())
}

func TestLogin_PersistFailureRollsBack(t *testing.T) {
	for _, key := range []string{core.StorageKeyUser, core.StorageKeyToken} {
		t.Run(key, func(t *testing.T) {
			mem := storage.NewMemory().Namespace("test")
			flaky := &flakyStorage{Storage: mem, failKey: key}
			nav := &Recorder{}
			s := Restore(context.Background(), flaky, succeedAs(core.User{Username: "alice", Role: core.RoleAdmin}),
				nav, Options{Logger: testutil.NewTestLogger(t)})

			res := s.Login(context.Background(), "alice", "correct")
			assert.False(t, res.Success())
			assert.Equal(t, MessageStorageError, res.Message())
			assert.False(t, s.IsAuthenticated())
			assert.False(t, s.HasUser())

			_, ok, err := mem.GetItem(context.Background(), core.StorageKeyUser)
			require.NoError(t, err)
			assert.False(t, ok, "no half-written user")

			_, navigated := nav.Target()
			assert.False(t, navigated)
		})
	}
}

func TestLogout(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := h.restore(t, succeedAs(core.User{Username: "alice", Role: core.RoleAdmin}))
	require.True(t, s.Login(ctx, "alice", "correct").Success())
	require.NoError(t, s.SetReturnURL(ctx, "/rekon"))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.HasUser())
	assert.False(t, s.IsAdmin())
	assert.Empty(t, s.ReturnURL())
	for _, key := range []string{core.StorageKeyUser, core.StorageKeyToken, core.StorageKeyReturnURL} {
		_, ok := h.get(t, key)
		assert.False(t, ok, key)
	}

	target, _ := h.nav.Target()
	assert.Equal(t, DefaultLoginPath, target)

	// Idempotent.
	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	target, _ = h.nav.Target()
	assert.Equal(t, DefaultLoginPath, target)

	restored := h.restore(t, nil)
	assert.False(t, restored.IsAuthenticated())
}

func TestLogout_StorageErrorStillClears(t *testing.T) {
	mem := storage.NewMemory()
	ns := mem.Namespace("test")
	s := Restore(context.Background(), ns, succeedAs(core.User{Username: "alice"}), nil,
		Options{Logger: testutil.NewTestLogger(t)})
	require.True(t, s.Login(context.Background(), "alice", "pw").Success())
	require.NoError(t, mem.Close())

	err := s.Logout(context.Background())
	require.ErrorIs(t, err, storage.ErrClosed)
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.HasUser())
}

func TestOnChange(t *testing.T) {
	var (
		mu      sync.Mutex
		changes []ChangeKind
	)
	opts := Options{
		Logger: testutil.NewTestLogger(t),
		OnChange: func(_ context.Context, c Change) {
			mu.Lock()
			defer mu.Unlock()
			changes = append(changes, c.Kind)
		},
	}
	ctx := context.Background()
	s := Restore(ctx, storage.NewMemory().Namespace("x"), succeedAs(core.User{Username: "alice"}), nil, opts)

	require.NoError(t, s.Logout(ctx))
	require.True(t, s.Login(ctx, "alice", "pw").Success())
	require.NoError(t, s.Logout(ctx))

	assert.Equal(t, []ChangeKind{ChangeLogin, ChangeLogout}, changes)
}

func TestStore_WithAuthClient(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req auth.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Username == "alice" && req.Password == "correct" {
			_, _ = w.Write([]byte(`{"s":true,"d":{"username":"alice","role":"admin"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"s":false,"message":"Invalid credentials"}`))
	}))
	t.Cleanup(backend.Close)

	client := auth.NewClient(auth.Config{BaseURL: backend.URL, Logger: testutil.NewTestLogger(t)})
	ctx := context.Background()

	t.Run("admin login", func(t *testing.T) {
		s := newHarness().restore(t, client)
		res := s.Login(ctx, "alice", "correct")
		require.True(t, res.Success())
		assert.True(t, s.IsAuthenticated())
		assert.True(t, s.IsAdmin())
		assert.True(t, s.HasAccess("settings"))
	})

	t.Run("rejected login", func(t *testing.T) {
		s := newHarness().restore(t, client)
		res := s.Login(ctx, "bob", "wrong")
		assert.False(t, res.Success())
		assert.Equal(t, "Invalid credentials", res.Message())
		assert.False(t, s.IsAuthenticated())
		assert.False(t, s.HasUser())
	})
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	s := newHarness().restore(t, nil)
	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestSetReturnURL_StorageFailure(t *testing.T) {
	mem := storage.NewMemory().Namespace("test")
	flaky := &flakyStorage{Storage: mem, failKey: core.StorageKeyReturnURL}
	s := Restore(context.Background(), flaky, succeedAs(core.User{Username: "alice"}), &Recorder{},
		Options{Logger: testutil.NewTestLogger(t)})

	err := s.SetReturnURL(context.Background(), "/invoice")
	require.ErrorIs(t, err, errDiskFull)
	assert.Empty(t, s.ReturnURL(), "memory follows storage")

	_, ok, err := mem.GetItem(context.Background(), core.StorageKeyReturnURL)
	require.NoError(t, err)
	assert.False(t, ok)
}
