package storage

import (
	"context"
	"sync"

	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// Memory is an in-process Backend. Values are lost when the process exits,
// so it only serves tests and throwaway dev servers.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]map[string]string
	closed bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

// Namespace returns the storage for name.
func (m *Memory) Namespace(name string) core.Storage {
	return &memoryNamespace{backend: m, name: name}
}

// Close drops all values.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.closed = true
	return nil
}

type memoryNamespace struct {
	backend *Memory
	name    string
}

func (n *memoryNamespace) GetItem(_ context.Context, key string) (string, bool, error) {
	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if n.backend.closed {
		return "", false, ErrClosed
	}
	v, ok := n.backend.items[n.name][key]
	return v, ok, nil
}

func (n *memoryNamespace) SetItem(_ context.Context, key, value string) error {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	if n.backend.closed {
		return ErrClosed
	}
	ns, ok := n.backend.items[n.name]
	if !ok {
		ns = make(map[string]string)
		n.backend.items[n.name] = ns
	}
	ns[key] = value
	return nil
}

func (n *memoryNamespace) RemoveItem(_ context.Context, key string) error {
	n.backend.mu.Lock()
	defer n.backend.mu.Unlock()
	if n.backend.closed {
		return ErrClosed
	}
	delete(n.backend.items[n.name], key)
	return nil
}
