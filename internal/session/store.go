// Package session holds the signed-in identity of one dashboard client and
// mirrors it to durable storage.
//
// A Store has two stable states: anonymous (no user, no token) and
// authenticated (user and token). It changes state only through Login and
// Logout, and every change is written to storage before the call returns.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// TokenLoggedIn is the session token written on a successful login. The
// backend does not issue tokens; the token marks that a login happened.
const TokenLoggedIn = "logged_in"

// MessageStorageError is reported when a successful login cannot be persisted.
const MessageStorageError = "Unable to save the session. Please try again."

// Default navigation targets.
const (
	DefaultLandingPath = "/"
	DefaultLoginPath   = "/auth/login"
)

// Options configures a Store.
type Options struct {
	LandingPath string
	LoginPath   string
	Logger      *slog.Logger
	// OnChange is called after a login or logout has been persisted.
	OnChange func(ctx context.Context, c Change)
}

// ChangeKind names a session transition.
type ChangeKind string

// Session transitions.
const (
	ChangeLogin  ChangeKind = "login"
	ChangeLogout ChangeKind = "logout"
)

// Change describes a completed transition.
type Change struct {
	Kind ChangeKind
	User *core.User
}

// Store is the session of one client.
type Store struct {
	storage core.Storage
	auth    core.Authenticator
	nav     Navigator
	opts    Options
	logger  *slog.Logger

	mu        sync.Mutex
	user      *core.User
	token     string
	returnURL string
}

// Restore builds a Store from what storage holds. Unreadable or malformed
// values leave the corresponding field empty; restoring never fails.
func Restore(ctx context.Context, storage core.Storage, auth core.Authenticator, nav Navigator, opts Options) *Store {
	if opts.LandingPath == "" {
		opts.LandingPath = DefaultLandingPath
	}
	if opts.LoginPath == "" {
		opts.LoginPath = DefaultLoginPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if nav == nil {
		nav = Discard
	}

	s := &Store{
		storage: storage,
		auth:    auth,
		nav:     nav,
		opts:    opts,
		logger:  logger,
	}

	if raw, ok := s.read(ctx, core.StorageKeyUser); ok {
		var u core.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			logger.Warn("discarding malformed stored user", "error", err)
		} else {
			s.user = &u
		}
	}
	if tok, ok := s.read(ctx, core.StorageKeyToken); ok {
		s.token = tok
	}
	if ret, ok := s.read(ctx, core.StorageKeyReturnURL); ok {
		s.returnURL = ret
	}

	if (s.user == nil) != (s.token == "") {
		logger.Debug("restored partial session", "has_user", s.user != nil, "has_token", s.token != "")
	}
	return s
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.storage.GetItem(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read session storage", "key", key, "error", err)
		return "", false
	}
	if !ok || v == "" || v == "null" {
		return "", false
	}
	return v, true
}

// Login authenticates through the auth client. On success the user and token
// are stored, the pending return path is consumed, and the store navigates
// to it or to the landing path. On failure nothing changes.
func (s *Store) Login(ctx context.Context, username, password string) core.LoginResult {
	res := s.auth.Login(ctx, username, password)
	user, ok := res.User()
	if !ok {
		return res
	}

	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("failed to encode user", "error", err)
		return core.LoginFailed(MessageStorageError)
	}

	s.mu.Lock()
	if err := s.persistLogin(ctx, string(data)); err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to persist login", "username", username, "error", err)
		return core.LoginFailed(MessageStorageError)
	}
	s.user = &user
	s.token = TokenLoggedIn
	target := s.returnURL
	s.returnURL = ""
	s.mu.Unlock()

	if target == "" {
		target = s.opts.LandingPath
	}
	s.logger.Info("session started", "username", user.Username, "role", user.Role, "redirect", target)
	s.notify(ctx, Change{Kind: ChangeLogin, User: &user})
	s.nav.Navigate(target)
	return res
}

// persistLogin writes user and token, undoing the writes if either fails.
// The caller holds s.mu.
func (s *Store) persistLogin(ctx context.Context, userJSON string) error {
	if err := s.storage.SetItem(ctx, core.StorageKeyUser, userJSON); err != nil {
		s.restoreStored(ctx)
		return err
	}
	if err := s.storage.SetItem(ctx, core.StorageKeyToken, TokenLoggedIn); err != nil {
		s.restoreStored(ctx)
		return err
	}
	if s.returnURL != "" {
		if err := s.storage.RemoveItem(ctx, core.StorageKeyReturnURL); err != nil {
			s.logger.Warn("failed to clear return path", "error", err)
		}
	}
	return nil
}

// restoreStored puts the in-memory state back into storage after a failed write.
func (s *Store) restoreStored(ctx context.Context) {
	var err error
	if s.user == nil {
		err = s.storage.RemoveItem(ctx, core.StorageKeyUser)
	} else if data, mErr := json.Marshal(s.user); mErr == nil {
		err = s.storage.SetItem(ctx, core.StorageKeyUser, string(data))
	}
	if err != nil {
		s.logger.Warn("failed to roll back session storage", "error", err)
	}
}

// Logout clears the session and navigates to the login path. It always
// clears the in-memory state; a storage error is returned after navigating.
// Logging out while anonymous only navigates.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.user
	s.user = nil
	s.token = ""
	s.returnURL = ""
	err := s.removeAll(ctx)
	s.mu.Unlock()

	if prev != nil {
		s.logger.Info("session ended", "username", prev.Username)
		s.notify(ctx, Change{Kind: ChangeLogout, User: prev})
	}
	s.nav.Navigate(s.opts.LoginPath)
	return err
}

func (s *Store) removeAll(ctx context.Context) error {
	var first error
	for _, key := range []string{core.StorageKeyUser, core.StorageKeyToken, core.StorageKeyReturnURL} {
		if err := s.storage.RemoveItem(ctx, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetReturnURL records where to resume after the next login.
func (s *Store) SetReturnURL(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.SetItem(ctx, core.StorageKeyReturnURL, path); err != nil {
		return err
	}
	s.returnURL = path
	return nil
}

// ReturnURL returns the pending return path, if any.
func (s *Store) ReturnURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.returnURL
}

// IsAuthenticated reports whether a session token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// HasUser reports whether a user record is present.
func (s *Store) HasUser() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAdmin reports whether the current user holds the admin role.
func (s *Store) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.IsAdmin()
}

// HasAccess reports whether the current user may use the capability key.
func (s *Store) HasAccess(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.HasAccess(key)
}

// LandingPath returns the default destination after login.
func (s *Store) LandingPath() string {
	return s.opts.LandingPath
}

// LoginPath returns the login page path.
func (s *Store) LoginPath() string {
	return s.opts.LoginPath
}

func (s *Store) notify(ctx context.Context, c Change) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(ctx, c)
	}
}
