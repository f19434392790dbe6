// Package storage provides durable key/value backends for client sessions.
//
// A Backend hands out one core.Storage per client namespace. The CLI uses a
// single namespace; the web server uses one namespace per browser.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// ErrClosed is returned by storage whose backend has been closed.
var ErrClosed = errors.New("storage closed")

// Backend hands out namespaced storage.
type Backend interface {
	Namespace(name string) core.Storage
	Close() error
}

// Purger is a Backend that can drop sessions nobody has written to lately.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// Backend kinds accepted by the configuration.
const (
	KindCookie = "cookie"
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
)
