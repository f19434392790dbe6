// Package authstub is a development stand-in for the accounting backend's
// login endpoint. It answers the same wire contract as the real endpoint and
// checks passwords against bcrypt hashes.
package authstub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// MessageInvalidCredentials is returned for unknown users and wrong passwords alike.
const MessageInvalidCredentials = "Invalid credentials"

// Account is a stub user with its bcrypt password hash.
type Account struct {
	User         core.User
	PasswordHash string
}

// NewAccount hashes password and returns the account.
func NewAccount(user core.User, password string) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("failed to hash password for %s: %w", user.Username, err)
	}
	return Account{User: user, PasswordHash: string(hash)}, nil
}

// Server serves the stub login endpoint.
type Server struct {
	accounts map[string]Account
	logger   *slog.Logger
}

// New creates a stub server for the given accounts, keyed by username.
func New(accounts []Account, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[a.User.Username] = a
	}
	return &Server{accounts: byName, logger: logger}
}

// Handler returns the HTTP handler exposing the login endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post(auth.LoginPath, s.handleLogin)
	return r
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, auth.Response{Message: "Malformed request"})
		return
	}

	account, ok := s.accounts[req.Username]
	if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Info("stub login rejected", "username", req.Username)
		writeJSON(w, http.StatusOK, auth.Response{Message: MessageInvalidCredentials})
		return
	}

	data, err := json.Marshal(account.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, auth.Response{Message: "Internal error"})
		return
	}
	s.logger.Info("stub login accepted", "username", req.Username)
	writeJSON(w, http.StatusOK, auth.Response{Success: true, Data: data})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
