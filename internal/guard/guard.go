// Package guard decides, for every navigation, whether it proceeds or is
// redirected to the login page.
package guard

import (
	"context"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
)

// Action is what the guard does with a navigation.
type Action string

// Guard actions.
const (
	ActionAllow    Action = "allow"
	ActionRedirect Action = "redirect"
)

// DefaultPublicPaths may be visited without a session.
var DefaultPublicPaths = []string{"/auth/login", "/auth/register", "/auth/error"}

// Destination is the target of a navigation.
type Destination struct {
	// Path is the matched path without query or fragment.
	Path string
	// FullPath includes the query and is what gets resumed after login.
	FullPath string
	// Chain holds the matched routes, root first.
	Chain []*routes.Route
}

// DestinationFor builds a Destination from a resolved match.
func DestinationFor(m routes.Match, fullPath string) Destination {
	if fullPath == "" {
		fullPath = m.Path
	}
	return Destination{Path: m.Path, FullPath: fullPath, Chain: m.Leaf.Chain}
}

// State is the part of the session the guard looks at.
type State struct {
	HasUser bool
}

// Decision is the guard's verdict.
type Decision struct {
	Action Action
	// Target is set for redirects.
	Target string
	// RecordReturn is the path to resume after login, if any.
	RecordReturn string
}

// Policy holds the paths the guard works with.
type Policy struct {
	PublicPaths []string
	LoginPath   string
	LandingPath string
}

// DefaultPolicy returns the dashboard's standard policy.
func DefaultPolicy() Policy {
	return Policy{
		PublicPaths: slices.Clone(DefaultPublicPaths),
		LoginPath:   session.DefaultLoginPath,
		LandingPath: session.DefaultLandingPath,
	}
}

// RequiresAuth reports whether dest needs a signed-in user.
func (p Policy) RequiresAuth(dest Destination) bool {
	if slices.Contains(p.PublicPaths, dest.Path) {
		return false
	}
	return routes.RequiresAuth(dest.Chain)
}

// Decide maps a session state and destination to a decision. It has no side effects.
func (p Policy) Decide(state State, dest Destination) Decision {
	if p.RequiresAuth(dest) && !state.HasUser {
		return Decision{Action: ActionRedirect, Target: p.LoginPath, RecordReturn: dest.FullPath}
	}
	if state.HasUser && dest.Path == p.LoginPath {
		return Decision{Action: ActionRedirect, Target: p.LandingPath}
	}
	return Decision{Action: ActionAllow}
}

// Guard applies a Policy to live sessions.
type Guard struct {
	Policy  Policy
	Metrics *metrics.Registry
	Logger  *slog.Logger
}

// New creates a Guard. A nil logger discards output.
func New(policy Policy, m *metrics.Registry, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{Policy: policy, Metrics: m, Logger: logger}
}

// Check decides the navigation for store and records the return path when
// the navigation is sent to login.
func (g *Guard) Check(ctx context.Context, store *session.Store, dest Destination) Decision {
	d := g.Policy.Decide(State{HasUser: store.HasUser()}, dest)

	if d.RecordReturn != "" {
		if err := store.SetReturnURL(ctx, d.RecordReturn); err != nil {
			g.Logger.Warn("failed to record return path", "path", d.RecordReturn, "error", err)
		}
	}
	g.Metrics.RecordGuardDecision(string(d.Action))
	g.Logger.Debug("guard decision",
		"path", dest.FullPath,
		"action", d.Action,
		"target", d.Target)
	return d
}
