package routes

import (
	"sync"
	"sync/atomic"

	"github.com/a-h/templ"
)

// Loader produces a page or layout component.
type Loader func() (templ.Component, error)

// Lazy is a component handle whose loader runs on first use. The loader is
// invoked at most once; its component, or its error, is cached for every
// later navigation.
type Lazy struct {
	load   Loader
	once   sync.Once
	loaded atomic.Bool

	component templ.Component
	err       error
}

// NewLazy wraps load in a lazily-resolved handle.
func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

// Of returns a handle for an already-built component constructor.
func Of(build func() templ.Component) *Lazy {
	return NewLazy(func() (templ.Component, error) {
		return build(), nil
	})
}

// Resolve returns the component, loading it on the first call.
func (l *Lazy) Resolve() (templ.Component, error) {
	l.once.Do(func() {
		l.component, l.err = l.load()
		l.loaded.Store(true)
	})
	return l.component, l.err
}

// Loaded reports whether the loader has already run.
func (l *Lazy) Loaded() bool {
	return l.loaded.Load()
}
