package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/routes"
)

// NewRoutesCommand creates the routes command.
func NewRoutesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes [path]",
		Short: "List the route table or resolve a path",
		Long: `Without arguments, list every navigable route with its pattern, name,
title and whether it requires a signed-in user.

With a path, show which route the path resolves to and what the navigation
guard decides for an anonymous and a signed-in visitor.`,
		Example: `  ledgerdesk routes
  ledgerdesk routes /rekon/settings
  ledgerdesk routes /no-such-page`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			rt, err := routes.NewTable(routes.Definitions())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				renderRouteTable(cc.Out, rt)
				return nil
			}
			return renderResolve(cc, rt, args[0])
		},
	}
	return cmd
}

func renderRouteTable(w io.Writer, rt *routes.Table) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Pattern", "Name", "Title", "Auth", "Redirect"})

	for _, leaf := range rt.Leaves() {
		r := leaf.Route()
		t.AppendRow(table.Row{
			leaf.Pattern,
			r.Name,
			leaf.Title(),
			yesNo(routes.RequiresAuth(leaf.Chain)),
			r.Redirect,
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d routes)\n", len(rt.Leaves()))
}

func renderResolve(cc *CommandContext, rt *routes.Table, path string) error {
	m, ok := rt.Resolve(path)
	if !ok {
		return fmt.Errorf("cannot resolve %q: paths must start with /", path)
	}

	policy := guard.Policy{
		PublicPaths: cc.Cfg.Navigation.PublicPaths,
		LoginPath:   cc.Cfg.Navigation.LoginPath,
		LandingPath: cc.Cfg.Navigation.LandingPath,
	}
	dest := guard.DestinationFor(m, path)

	t := table.NewWriter()
	t.SetOutputMirror(cc.Out)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"Path", m.Path},
		{"Pattern", m.Pattern},
		{"Route", m.Route().Name},
		{"Title", m.Title()},
		{"Requires auth", yesNo(policy.RequiresAuth(dest))},
		{"Anonymous", describeDecision(policy.Decide(guard.State{}, dest))},
		{"Signed in", describeDecision(policy.Decide(guard.State{HasUser: true}, dest))},
	})
	if r := m.Route().Redirect; r != "" {
		t.AppendRow(table.Row{"Redirect", r})
	}
	t.Render()
	return nil
}

func describeDecision(d guard.Decision) string {
	if d.Action == guard.ActionAllow {
		return "allow"
	}
	return "redirect to " + d.Target
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
