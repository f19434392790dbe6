package authstub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/internal/testutil"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

func newStub(t *testing.T) *httptest.Server {
	t.Helper()
	alice, err := NewAccount(core.User{ID: "1", Username: "alice", Role: core.RoleAdmin}, "correct")
	require.NoError(t, err)
	bob, err := NewAccount(core.User{ID: "2", Username: "bob", Role: core.RoleStaff,
		Permissions: core.NewPermissionSet("invoice")}, "hunter2")
	require.NoError(t, err)

	srv := httptest.NewServer(New([]Account{alice, bob}, testutil.NewTestLogger(t)).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestStub_WithAuthClient(t *testing.T) {
	srv := newStub(t)
	client := auth.NewClient(auth.Config{BaseURL: srv.URL, Logger: testutil.NewTestLogger(t)})
	ctx := context.Background()

	tests := []struct {
		name        string
		username    string
		password    string
		wantSuccess bool
		wantMessage string
	}{
		{name: "admin", username: "alice", password: "correct", wantSuccess: true},
		{name: "staff", username: "bob", password: "hunter2", wantSuccess: true},
		{name: "wrong password", username: "bob", password: "wrong", wantMessage: MessageInvalidCredentials},
		{name: "unknown user", username: "mallory", password: "x", wantMessage: MessageInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := client.Login(ctx, tt.username, tt.password)
			assert.Equal(t, tt.wantSuccess, res.Success())
			assert.Equal(t, tt.wantMessage, res.Message())
			if tt.wantSuccess {
				u, _ := res.User()
				assert.Equal(t, tt.username, u.Username)
			}
		})
	}
}

func TestStub_MalformedRequest(t *testing.T) {
	srv := newStub(t)

	res, err := http.Post(srv.URL+auth.LoginPath, "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestStub_OnlyPost(t *testing.T) {
	srv := newStub(t)

	res, err := http.Get(srv.URL + auth.LoginPath)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}
