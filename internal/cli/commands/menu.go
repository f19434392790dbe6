package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerdesk/internal/menu"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// MenuOptions holds options for the menu command.
type MenuOptions struct {
	Check bool
	Role  string
	Perms []string
}

// NewMenuCommand creates the menu command.
func NewMenuCommand() *cobra.Command {
	opts := &MenuOptions{}

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Show the navigation menu",
		Long: `Print the navigation menu as a tree.

Use --role and --permission to preview the menu a particular user sees,
and --check to lint the menu definition.`,
		Example: `  ledgerdesk menu
  ledgerdesk menu --role staff --permission rekon_settings
  ledgerdesk menu --check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(NewCommandContext(cmd), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Validate the menu definition")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Show the menu as seen by this role")
	cmd.Flags().StringSliceVar(&opts.Perms, "permission", nil, "Permissions of the previewed user")

	return cmd
}

func runMenu(cc *CommandContext, opts *MenuOptions) error {
	entries := menu.Default()

	if opts.Check {
		if err := menu.Validate(entries); err != nil {
			return fmt.Errorf("menu check failed: %w", err)
		}
		_, _ = fmt.Fprintf(cc.Out, "menu ok (%d targets)\n", len(menu.Targets(entries)))
		return nil
	}

	if opts.Role != "" || len(opts.Perms) > 0 {
		u := &core.User{Role: core.Role(opts.Role), Permissions: core.NewPermissionSet(opts.Perms...)}
		entries = menu.Visible(entries, u.HasAccess)
	}
	renderMenu(cc.Out, entries)
	return nil
}

func renderMenu(w io.Writer, entries []menu.Entry) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedLight)
	appendEntries(l, entries)
	l.Render()
}

func appendEntries(l list.Writer, entries []menu.Entry) {
	for _, e := range entries {
		switch {
		case e.IsHeader():
			l.AppendItem("[" + e.Header + "]")
		case e.Divider:
			l.AppendItem("---")
		case e.IsSubmenu():
			l.AppendItem(e.Title)
			l.Indent()
			appendEntries(l, e.Children)
			l.UnIndent()
		default:
			item := e.Title + "  " + e.To
			if e.Capability != "" {
				item += "  (" + e.Capability + ")"
			}
			l.AppendItem(item)
		}
	}
}
