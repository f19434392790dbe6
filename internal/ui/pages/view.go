// Package pages provides the page components of the dashboard shell.
//
// Components are written in .templ files; run `templ generate` after editing
// them. Layouts render their nested page with { children... }, mirroring how
// the route table nests pages inside layouts.
package pages

import (
	"context"

	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// View holds the per-request data every component can read.
type View struct {
	Title       string
	CurrentPath string
	Menu        []menu.Entry
	User        *core.User
	// Flash is a one-off message, e.g. a failed login.
	Flash string
	// Username pre-fills the login form after a failed attempt.
	Username string
}

type viewKey struct{}

// WithView stores v in ctx.
func WithView(ctx context.Context, v View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFrom returns the view stored in ctx, or an empty view.
func ViewFrom(ctx context.Context) View {
	if v, ok := ctx.Value(viewKey{}).(View); ok {
		return v
	}
	return View{}
}
