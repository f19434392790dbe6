package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// Table is a validated route table ready to be mounted or queried.
type Table struct {
	leaves    []Leaf
	byPattern map[string]Leaf
	// resolver mirrors the mounted routes so paths can be resolved without serving them.
	resolver *chi.Mux
}

// Match is the result of resolving a path.
type Match struct {
	Leaf
	Path   string
	Params map[string]string
}

// NewTable validates roots and prepares them for mounting.
func NewTable(roots []*Route) (*Table, error) {
	if err := Validate(roots); err != nil {
		return nil, fmt.Errorf("invalid route table: %w", err)
	}

	t := &Table{
		leaves:    Flatten(roots),
		byPattern: make(map[string]Leaf),
		resolver:  chi.NewMux(),
	}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, leaf := range t.leaves {
		t.byPattern[leaf.Pattern] = leaf
		t.resolver.Get(leaf.Pattern, noop)
	}
	return t, nil
}

// Leaves returns the navigable routes in registration order.
func (t *Table) Leaves() []Leaf {
	return t.leaves
}

// Lookup returns the leaf registered under a route name.
func (t *Table) Lookup(name string) (Leaf, bool) {
	for _, leaf := range t.leaves {
		if leaf.Route().Name == name {
			return leaf, true
		}
	}
	return Leaf{}, false
}

// Resolve finds the route a path would be served by. With the catch-all
// registered every path resolves; ok is false only for malformed input.
func (t *Table) Resolve(path string) (Match, bool) {
	if path == "" || path[0] != '/' {
		return Match{}, false
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	rctx := chi.NewRouteContext()
	if !t.resolver.Match(rctx, http.MethodGet, path) {
		return Match{}, false
	}
	leaf, ok := t.byPattern[rctx.RoutePattern()]
	if !ok {
		return Match{}, false
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		params[key] = rctx.URLParams.Values[i]
	}
	return Match{Leaf: leaf, Path: path, Params: params}, true
}

// Mount registers every leaf on r. handler builds the endpoint for a leaf;
// it is called once per leaf at mount time.
func (t *Table) Mount(r chi.Router, handler func(Leaf) http.Handler) {
	for _, leaf := range t.leaves {
		r.Method(http.MethodGet, leaf.Pattern, handler(leaf))
	}
}

// Components resolves every component of a leaf's chain, layouts first.
// Routes without a component are skipped.
func (l Leaf) Components() ([]templ.Component, error) {
	var out []templ.Component
	for _, r := range l.Chain {
		if r.Component == nil {
			continue
		}
		c, err := r.Component.Resolve()
		if err != nil {
			return nil, fmt.Errorf("failed to load component for %s: %w", l.Pattern, err)
		}
		out = append(out, c)
	}
	return out, nil
}
