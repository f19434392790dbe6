// Package routes defines the dashboard route table and mounts it onto chi.
//
// A route tree mirrors the page hierarchy: parent routes carry layouts and
// metadata, leaves carry pages. Child paths that start with "/" are absolute,
// all others are joined to the parent path.
package routes

import (
	"errors"
	"fmt"
	"strings"
)

// CatchAllPath is the chi pattern that matches every path no other route claims.
const CatchAllPath = "/*"

// Meta is the metadata bag of a route.
type Meta struct {
	// RequiresAuth is inherited by descendants unless they set their own value.
	RequiresAuth *bool
	Title        string
}

// Route is one node of the route table.
type Route struct {
	Name      string
	Path      string
	Component *Lazy
	// Redirect sends navigations to this route elsewhere.
	Redirect string
	Meta     Meta
	Children []*Route
}

// Leaf is a navigable route together with the chain of routes matched to
// reach it, root first.
type Leaf struct {
	Pattern string
	Chain   []*Route
}

// Route returns the matched route itself.
func (l Leaf) Route() *Route {
	return l.Chain[len(l.Chain)-1]
}

// Title returns the nearest title in the chain.
func (l Leaf) Title() string {
	for i := len(l.Chain) - 1; i >= 0; i-- {
		if t := l.Chain[i].Meta.Title; t != "" {
			return t
		}
	}
	return ""
}

// RequiresAuth reports whether a matched chain needs an authenticated user.
// The flag nearest to the leaf wins; a chain without any flag is public.
func RequiresAuth(chain []*Route) bool {
	for i := len(chain) - 1; i >= 0; i-- {
		if f := chain[i].Meta.RequiresAuth; f != nil {
			return *f
		}
	}
	return false
}

// Bool returns a pointer to b for Meta.RequiresAuth literals.
func Bool(b bool) *bool {
	return &b
}

// JoinPath resolves a child path against its parent.
func JoinPath(parent, child string) string {
	switch {
	case strings.HasPrefix(child, "/"):
		return child
	case child == "":
		return parent
	default:
		return strings.TrimSuffix(parent, "/") + "/" + child
	}
}

// Flatten returns the navigable leaves of the trees in registration order.
// Routes without children are leaves, and so are routes with a redirect.
func Flatten(roots []*Route) []Leaf {
	var leaves []Leaf
	var walk func(r *Route, base string, chain []*Route)
	walk = func(r *Route, base string, chain []*Route) {
		chain = append(chain[:len(chain):len(chain)], r)
		pattern := JoinPath(base, r.Path)
		if len(r.Children) == 0 || r.Redirect != "" {
			leaves = append(leaves, Leaf{Pattern: pattern, Chain: chain})
		}
		for _, child := range r.Children {
			walk(child, pattern, chain)
		}
	}
	for _, r := range roots {
		walk(r, "/", nil)
	}
	return leaves
}

// Validation errors.
var (
	ErrDuplicateName    = errors.New("duplicate route name")
	ErrDuplicatePath    = errors.New("duplicate route path")
	ErrMissingCatchAll  = errors.New("catch-all route is not registered")
	ErrMissingComponent = errors.New("route has neither component nor redirect")
)

// Validate checks the structural invariants of the table: unique names,
// unique sibling paths, unique resolved patterns, a component or redirect on
// every leaf, and a registered catch-all route.
func Validate(roots []*Route) error {
	var errs []error
	names := make(map[string]bool)

	var walk func(siblings []*Route)
	walk = func(siblings []*Route) {
		paths := make(map[string]bool)
		for _, r := range siblings {
			if r.Name != "" {
				if names[r.Name] {
					errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name))
				}
				names[r.Name] = true
			}
			if paths[r.Path] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicatePath, r.Path))
			}
			paths[r.Path] = true
			walk(r.Children)
		}
	}
	walk(roots)

	patterns := make(map[string]bool)
	catchAll := false
	for _, leaf := range Flatten(roots) {
		if patterns[leaf.Pattern] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicatePath, leaf.Pattern))
		}
		patterns[leaf.Pattern] = true
		if leaf.Pattern == CatchAllPath {
			catchAll = true
		}
		if r := leaf.Route(); r.Component == nil && r.Redirect == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingComponent, leaf.Pattern))
		}
	}
	if !catchAll {
		errs = append(errs, ErrMissingCatchAll)
	}

	return errors.Join(errs...)
}
