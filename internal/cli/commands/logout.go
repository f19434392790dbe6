package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cc := NewCommandContext(cmd)

			sess, err := openCLISession(ctx, cc)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			wasSignedIn := sess.Store.HasUser()
			if err := sess.Store.Logout(ctx); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			if err := sess.db.DeleteNamespace(ctx, CLINamespace); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			if wasSignedIn {
				_, _ = fmt.Fprintln(cc.Out, "Signed out")
			} else {
				_, _ = fmt.Fprintln(cc.Out, "Not signed in")
			}
			return nil
		},
	}
}
