package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/internal/authstub"
	intconfig "github.com/leapstack-labs/ledgerdesk/internal/config"
	"github.com/leapstack-labs/ledgerdesk/pkg/core"
)

// NewStubAuthCommand creates the stub-auth command.
func NewStubAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub-auth",
		Short: "Serve a development login endpoint",
		Long: `Serve a stand-in for the accounting backend's login endpoint.

Accounts come from stub.users in the config file. When none are configured,
admin/admin, staff/staff and approver/approver are served.`,
		Example: `  ledgerdesk stub-auth
  ledgerdesk stub-auth --port 9000
  ledgerdesk serve --auth-url http://localhost:8766`,
		RunE: runStubAuth,
	}

	cmd.Flags().Int("port", intconfig.DefaultStubPort, "Port to listen on")
	annotate(cmd, map[string]string{"port": "stub.port"})

	return cmd
}

func runStubAuth(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := cc.Cfg.Stub.Users
	if len(users) == 0 {
		users = intconfig.DefaultStubUsers()
	}
	accounts, err := stubAccounts(users)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", ":"+strconv.Itoa(cc.Cfg.Stub.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cc.Cfg.Stub.Port, err)
	}

	_, _ = fmt.Fprintf(cc.Out, "Login endpoint at http://%s%s (%d accounts)\n", ln.Addr(), auth.LoginPath, len(accounts))
	return serveStub(ctx, ln, authstub.New(accounts, cc.Logger).Handler())
}

// stubAccounts hashes the configured passwords.
func stubAccounts(users []intconfig.StubUser) ([]authstub.Account, error) {
	accounts := make([]authstub.Account, 0, len(users))
	for i, u := range users {
		acct, err := authstub.NewAccount(core.User{
			ID:          strconv.Itoa(i + 1),
			Username:    u.Username,
			Name:        u.Name,
			Role:        core.Role(u.Role),
			Permissions: core.NewPermissionSet(u.Permissions...),
		}, u.Password)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func serveStub(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           middleware.Recoverer(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
