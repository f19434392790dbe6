// Package auth provides the login and logout endpoints.
package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/clientsession"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/features/common"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/features/shell"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/pages"
)

// MessageMissingCredentials is shown when the form is submitted incomplete.
const MessageMissingCredentials = "Username and password are required"

const maxBodyBytes = 64 << 10

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON answer to a login request.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Handlers provides HTTP handlers for the auth feature.
type Handlers struct {
	shell   *shell.Handlers
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sh *shell.Handlers, m *metrics.Registry, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{shell: sh, metrics: m, logger: logger}
}

// Login signs the client in. Form posts are answered with a redirect or
// the login page showing the failure; JSON posts get a LoginResponse.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	client, ok := clientsession.FromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	asJSON := common.WantsJSON(r)
	creds, err := readCredentials(r)
	if err != nil {
		h.logger.Debug("malformed login request", "error", err)
		h.fail(w, r, asJSON, http.StatusBadRequest, creds.Username, MessageMissingCredentials)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		h.fail(w, r, asJSON, http.StatusBadRequest, creds.Username, MessageMissingCredentials)
		return
	}

	res := client.Store.Login(r.Context(), creds.Username, creds.Password)
	h.metrics.RecordLogin(res.Success())
	if !res.Success() {
		h.logger.Info("login rejected", "username", creds.Username, "client", client.ID)
		h.fail(w, r, asJSON, http.StatusUnauthorized, creds.Username, res.Message())
		return
	}

	target, _ := client.Nav.Target()
	if asJSON {
		common.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, Redirect: target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, asJSON bool, status int, username, message string) {
	if asJSON {
		common.WriteJSON(w, status, LoginResponse{Message: message})
		return
	}
	h.shell.RenderNamed(w, r, routes.NameLogin, pages.View{Flash: message, Username: username}, status)
}

func readCredentials(r *http.Request) (Credentials, error) {
	var c Credentials
	if common.IsJSONBody(r) {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Username = r.PostForm.Get("username")
		c.Password = r.PostForm.Get("password")
	}
	c.Username = strings.TrimSpace(c.Username)
	return c, nil
}

// Logout ends the session and redirects to the login page.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	client, ok := clientsession.FromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if err := client.Store.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session storage", "client", client.ID, "error", err)
	}
	target, _ := client.Nav.Target()
	if common.WantsJSON(r) {
		common.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, Redirect: target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
