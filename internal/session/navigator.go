package session

import "sync"

// Navigator moves the client to another path.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}

// Discard ignores navigations.
var Discard Navigator = NavigatorFunc(func(string) {})

// Recorder remembers the last navigation. HTTP handlers turn it into a redirect.
type Recorder struct {
	mu     sync.Mutex
	target string
	called bool
}

// Navigate records path.
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = path
	r.called = true
}

// Target returns the last recorded path and whether any navigation happened.
func (r *Recorder) Target() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target, r.called
}
