package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerdesk/internal/testutil"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// newTestClient starts a server answering the login endpoint with handler.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(LoginPath, handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL: srv.URL + "/",
		Timeout: 2 * time.Second,
		Logger:  testutil.NewTestLogger(t),
	})
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantSuccess bool
		wantMessage string
		wantRole    core.Role
	}{
		{
			name:        "success with admin user",
			handler:     respond(http.StatusOK, `{"s":true,"d":{"id":1,"username":"alice","role":"admin"}}`),
			wantSuccess: true,
			wantRole:    core.RoleAdmin,
		},
		{
			name:        "success with permission flags",
			handler:     respond(http.StatusOK, `{"s":true,"d":{"username":"bob","role":"staff","permissions":{"invoice":1}}}`),
			wantSuccess: true,
			wantRole:    core.RoleStaff,
		},
		{
			name:        "success with numeric flag",
			handler:     respond(http.StatusOK, `{"s":1,"d":{"username":"alice","role":"admin"}}`),
			wantSuccess: true,
			wantRole:    core.RoleAdmin,
		},
		{
			name:        "success with string flag",
			handler:     respond(http.StatusOK, `{"s":"1","d":{"username":"alice","role":"admin"}}`),
			wantSuccess: true,
			wantRole:    core.RoleAdmin,
		},
		{
			name:        "numeric rejection keeps message",
			handler:     respond(http.StatusOK, `{"s":0,"message":"Invalid credentials"}`),
			wantMessage: "Invalid credentials",
		},
		{
			name:        "null flag is a rejection",
			handler:     respond(http.StatusOK, `{"s":null}`),
			wantMessage: MessageLoginFailed,
		},
		{
			name:        "rejection with server message",
			handler:     respond(http.StatusOK, `{"s":false,"message":"Invalid credentials"}`),
			wantMessage: "Invalid credentials",
		},
		{
			name:        "rejection without message",
			handler:     respond(http.StatusOK, `{"s":false}`),
			wantMessage: MessageLoginFailed,
		},
		{
			name:        "rejection with blank message",
			handler:     respond(http.StatusOK, `{"s":false,"message":"   "}`),
			wantMessage: MessageLoginFailed,
		},
		{
			name:        "server error status",
			handler:     respond(http.StatusInternalServerError, `{"s":false,"message":"db down"}`),
			wantMessage: MessageConnectionError,
		},
		{
			name:        "malformed body",
			handler:     respond(http.StatusOK, `<html>oops</html>`),
			wantMessage: MessageConnectionError,
		},
		{
			name:        "success without user payload",
			handler:     respond(http.StatusOK, `{"s":true}`),
			wantMessage: MessageConnectionError,
		},
		{
			name:        "success with malformed user payload",
			handler:     respond(http.StatusOK, `{"s":true,"d":"not-an-object"}`),
			wantMessage: MessageConnectionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)

			res := c.Login(context.Background(), "alice", "secret")

			assert.Equal(t, tt.wantSuccess, res.Success())
			assert.Equal(t, tt.wantMessage, res.Message())
			if tt.wantSuccess {
				u, ok := res.User()
				require.True(t, ok)
				assert.Equal(t, tt.wantRole, u.Role)
			}
		})
	}
}

func TestClient_SendsCredentials(t *testing.T) {
	type received struct {
		method      string
		contentType string
		body        Request
	}
	got := make(chan received, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got <- received{method: r.Method, contentType: r.Header.Get("Content-Type"), body: body}
		respond(http.StatusOK, `{"s":false}`)(w, r)
	})

	_ = c.Login(context.Background(), "alice", "correct")

	rcv := <-got
	assert.Equal(t, http.MethodPost, rcv.method)
	assert.Equal(t, "application/json", rcv.contentType)
	assert.Equal(t, Request{Username: "alice", Password: "correct"}, rcv.body)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second})
	res := c.Login(context.Background(), "alice", "secret")

	assert.False(t, res.Success())
	assert.Equal(t, MessageConnectionError, res.Message())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)
	c.http.Timeout = 50 * time.Millisecond

	res := c.Login(context.Background(), "alice", "secret")
	assert.Equal(t, MessageConnectionError, res.Message())
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newTestClient(t, respond(http.StatusOK, `{"s":true,"d":{"role":"admin"}}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Login(ctx, "alice", "secret")
	assert.False(t, res.Success())
	assert.Equal(t, MessageConnectionError, res.Message())
}

func TestNewClient_Endpoint(t *testing.T) {
	assert.Equal(t, "https://example.test/Backend/Api/Login/Auth.php",
		NewClient(Config{BaseURL: "https://example.test/Backend/Api/"}).Endpoint())
	assert.Equal(t, "https://example.test/Backend/Api/Login/Auth.php",
		NewClient(Config{BaseURL: "https://example.test/Backend/Api"}).Endpoint())
}
