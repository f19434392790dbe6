package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite is a Backend persisting items in a SQLite database.
type SQLite struct {
	// mu guards db; Close waits for in-flight operations.
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database exists per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("opened sqlite storage", "path", path)
	return &SQLite{db: db, path: path, logger: logger}, nil
}

// Path returns the database path.
func (s *SQLite) Path() string {
	return s.path
}

// SchemaVersion returns the applied migration version.
func (s *SQLite) SchemaVersion() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	return migrationVersion(s.db)
}

// Namespace returns the storage for name.
func (s *SQLite) Namespace(name string) core.Storage {
	return &sqliteNamespace{store: s, name: name}
}

// DeleteNamespace removes every item of a namespace.
func (s *SQLite) DeleteNamespace(ctx context.Context, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM storage_items WHERE namespace = ?`, name); err != nil {
		return fmt.Errorf("failed to delete namespace: %w", err)
	}
	return nil
}

// Purge removes items not written since before and returns how many were removed.
func (s *SQLite) Purge(ctx context.Context, before time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM storage_items WHERE updated_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge storage: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type sqliteNamespace struct {
	store *SQLite
	name  string
}

func (n *sqliteNamespace) GetItem(ctx context.Context, key string) (string, bool, error) {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	db := n.store.db
	if db == nil {
		return "", false, ErrClosed
	}

	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM storage_items WHERE namespace = ? AND key = ?`,
		n.name, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (n *sqliteNamespace) SetItem(ctx context.Context, key, value string) error {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	db := n.store.db
	if db == nil {
		return ErrClosed
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO storage_items (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		n.name, key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (n *sqliteNamespace) RemoveItem(ctx context.Context, key string) error {
	n.store.mu.RLock()
	defer n.store.mu.RUnlock()
	db := n.store.db
	if db == nil {
		return ErrClosed
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM storage_items WHERE namespace = ? AND key = ?`,
		n.name, key,
	); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
