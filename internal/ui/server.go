// Package ui provides the web server of the LedgerDesk dashboard shell.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
	"github.com/leapstack-labs/ledgerdesk/internal/storage"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/clientsession"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/notifier"
	"github.com/leapstack-labs/ledgerdesk/internal/ui/router"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// ErrNoAuthenticator is returned when the server has no login backend.
var ErrNoAuthenticator = errors.New("no authenticator configured")

// Server is the dashboard server.
type Server struct {
	port     int
	dev      bool
	watchDir string
	logger   *slog.Logger
	notifier *notifier.Notifier
	handler  http.Handler
	ready    chan string

	purger     storage.Purger
	maxAge     time.Duration
	purgeEvery time.Duration
}

// maxPurgeInterval bounds how long an expired session outlives its max age.
const maxPurgeInterval = time.Hour

// Config holds configuration for the dashboard server.
type Config struct {
	Port          int
	SessionSecret string
	Dev           bool
	// WatchDir is watched for changes when Dev is set.
	WatchDir string
	// Auth verifies credentials against the accounting backend.
	Auth core.Authenticator
	// Backend holds session values. Nil keeps them in the client cookie.
	Backend storage.Backend
	// SessionMaxAge drops backend sessions idle for longer, when the backend
	// supports it. Zero keeps them.
	SessionMaxAge time.Duration
	// Policy defaults to guard.DefaultPolicy.
	Policy  *guard.Policy
	Menu    []menu.Entry
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// NewServer creates a new dashboard server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Auth == nil {
		return nil, ErrNoAuthenticator
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	policy := guard.DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	entries := cfg.Menu
	if entries == nil {
		entries = menu.Default()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	table, err := routes.NewTable(routes.Definitions())
	if err != nil {
		return nil, fmt.Errorf("invalid route table: %w", err)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	n := notifier.New()
	sessionManager := clientsession.New(clientsession.Config{
		Cookies: sessionStore,
		Backend: cfg.Backend,
		Auth:    cfg.Auth,
		Options: session.Options{
			LandingPath: policy.LandingPath,
			LoginPath:   policy.LoginPath,
			Logger:      logger,
		},
		Notifier: n,
		Logger:   logger,
	})

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.RedirectSlashes,
		middleware.Compress(5),
	)

	err = router.SetupRoutes(r, router.Deps{
		Table:    table,
		Guard:    guard.New(policy, m, logger),
		Menu:     entries,
		Sessions: sessionManager,
		Notifier: n,
		Metrics:  m,
		Logger:   logger,
		IsDev:    cfg.Dev,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s := &Server{
		port:     cfg.Port,
		dev:      cfg.Dev,
		watchDir: cfg.WatchDir,
		logger:   logger,
		notifier: n,
		handler:  r,
		ready:    make(chan string, 1),
	}
	if p, ok := cfg.Backend.(storage.Purger); ok && cfg.SessionMaxAge > 0 {
		s.purger = p
		s.maxAge = cfg.SessionMaxAge
		s.purgeEvery = min(cfg.SessionMaxAge, maxPurgeInterval)
	}
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Ready receives the listening address once Serve is accepting connections.
func (s *Server) Ready() <-chan string {
	return s.ready
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	addr := ln.Addr().String()
	s.logger.Info("starting dashboard server", "addr", addr, "dev", s.dev)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.ready <- addr
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if s.dev && s.watchDir != "" {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	if s.purger != nil {
		eg.Go(func() error {
			s.purgeSessions(egctx)
			return nil
		})
	}

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down dashboard server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for session update streams.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// purgeSessions drops idle sessions until ctx is done. Failures are logged
// and retried on the next tick.
func (s *Server) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(s.purgeEvery)
	defer ticker.Stop()

	for {
		n, err := s.purger.Purge(ctx, time.Now().Add(-s.maxAge))
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.Warn("failed to purge idle sessions", "error", err)
		case n > 0:
			s.logger.Info("purged idle sessions", "items", n, "max_age", s.maxAge)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// watchFiles reloads every connected tab when a file under watchDir changes.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, s.watchDir); err != nil {
		// Don't fail - continue without watching
		s.logger.Error("failed to watch directory", "dir", s.watchDir, "error", err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New subdirectories are watched too.
				_ = watchDirRecursive(watcher, event.Name)
			}

			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(100*time.Millisecond, func() {
				s.logger.Debug("file changed, reloading clients", "file", name)
				s.notifier.Broadcast()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
