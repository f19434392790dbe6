// Package notifier delivers session change pings to the open tabs of a client.
package notifier

import "sync"

// Notifier fans pings out to listeners grouped by client id.
// Listeners receive an empty struct and should re-read the session.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[string]map[chan struct{}]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives pings for client.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(client string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	set, ok := n.listeners[client]
	if !ok {
		set = make(map[chan struct{}]struct{})
		n.listeners[client] = set
	}
	set[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(client string, ch chan struct{}) {
	n.mu.Lock()
	if set, ok := n.listeners[client]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(n.listeners, client)
		}
	}
	n.mu.Unlock()
	close(ch)
}

// Publish pings every listener of client.
// Non-blocking: a listener with a pending ping is skipped.
func (n *Notifier) Publish(client string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for ch := range n.listeners[client] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Broadcast pings every listener of every client.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, set := range n.listeners {
		for ch := range set {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Len returns the number of listeners of client.
func (n *Notifier) Len(client string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners[client])
}
