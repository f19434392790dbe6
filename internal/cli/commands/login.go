package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrLoginRejected is returned when the login endpoint refuses the credentials.
var ErrLoginRejected = errors.New("login rejected")

// LoginOptions holds options for the login command.
type LoginOptions struct {
	Username      string
	PasswordStdin bool
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in against the login endpoint",
		Long: `Sign in with the configured login endpoint and keep the session in the
local session database (storage.path).

The password is prompted for when stdin is a terminal. Otherwise the first
line of stdin is used.`,
		Example: `  ledgerdesk login --username alice
  echo "$PASSWORD" | ledgerdesk login --username alice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Username to sign in with")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runLogin(cmd *cobra.Command, opts *LoginOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sess, err := openCLISession(ctx, cc)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	result := sess.Store.Login(ctx, opts.Username, password)
	u, ok := result.User()
	if !ok {
		return fmt.Errorf("%w: %s", ErrLoginRejected, result.Message())
	}

	_, _ = fmt.Fprintf(cc.Out, "Signed in as %s (%s)\n", u.DisplayName(), u.Role)
	if target, ok := sess.Nav.Target(); ok {
		_, _ = fmt.Fprintf(cc.Out, "Landing page: %s\n", target)
	}
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
