package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cc := NewCommandContext(cmd)

			sess, err := openCLISession(ctx, cc)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			u := sess.Store.User()
			if u == nil {
				_, _ = fmt.Fprintln(cc.Out, "Not signed in")
				return nil
			}

			perms := "-"
			if keys := u.Permissions.Keys(); len(keys) > 0 {
				perms = strings.Join(keys, ", ")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cc.Out)
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"Username", u.Username},
				{"Name", u.DisplayName()},
				{"Role", string(u.Role)},
				{"Admin", yesNo(sess.Store.IsAdmin())},
				{"Permissions", perms},
				{"Token", yesNo(sess.Store.IsAuthenticated())},
			})
			if ret := sess.Store.ReturnURL(); ret != "" {
				t.AppendRow(table.Row{"Return URL", ret})
			}
			t.Render()
			return nil
		},
	}
}
