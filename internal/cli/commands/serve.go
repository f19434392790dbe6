package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerdesk/internal/cli/config"
	"github.com/leapstack-labs/ledgerdesk/internal/guard"
	"github.com/leapstack-labs/ledgerdesk/internal/metrics"
	"github.com/leapstack-labs/ledgerdesk/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard server",
		Long: `Start the LedgerDesk dashboard server.

The server renders the dashboard shell, signs users in against the
accounting backend (auth.base_url) and keeps each browser's session in
the configured storage backend.`,
		Example: `  # Start on the default port with cookie sessions
  ledgerdesk serve

  # Keep sessions in SQLite
  ledgerdesk serve --backend sqlite

  # Point at a local login stub
  ledgerdesk serve --auth-url http://localhost:8766`,
		RunE: runServe,
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().String("backend", "", "Session storage backend (cookie|sqlite|redis|memory)")
	cmd.Flags().String("auth-url", "", "Base URL of the accounting backend")
	cmd.Flags().Bool("dev", false, "Enable development endpoints")
	cmd.Flags().String("watch", "", "Directory to watch in dev mode; changes reload open tabs")
	annotate(cmd, map[string]string{
		"port":     "server.port",
		"backend":  "storage.backend",
		"auth-url": "auth.base_url",
		"dev":      "server.dev",
		"watch":    "server.watch_dir",
	})

	_ = cmd.RegisterFlagCompletionFunc("backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"cookie", "sqlite", "redis", "memory"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// annotate records the config key each flag sets.
func annotate(cmd *cobra.Command, keys map[string]string) {
	for name, key := range keys {
		_ = cmd.Flags().SetAnnotation(name, config.KeyAnnotation, []string{key})
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg, cc.Logger)
	if err != nil {
		return fmt.Errorf("failed to open session storage: %w", err)
	}
	if backend != nil {
		defer func() { _ = backend.Close() }()
	}

	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		cc.Logger.Warn("no server.session_secret configured; sessions end when the server restarts")
	}

	policy := guard.Policy{
		PublicPaths: cfg.Navigation.PublicPaths,
		LoginPath:   cfg.Navigation.LoginPath,
		LandingPath: cfg.Navigation.LandingPath,
	}
	server, err := ui.NewServer(ui.Config{
		Port:          cfg.Server.Port,
		SessionSecret: secret,
		Dev:           cfg.Server.Dev,
		WatchDir:      cfg.Server.WatchDir,
		Auth:          newAuthClient(cfg, cc.Logger),
		Backend:       backend,
		SessionMaxAge: cfg.Storage.MaxAge,
		Policy:        &policy,
		Metrics:       metrics.New(),
		Logger:        cc.Logger,
	})
	if err != nil {
		return err
	}

	go func() {
		select {
		case addr := <-server.Ready():
			_, _ = fmt.Fprintf(cc.Out, "Dashboard listening on %s (sessions: %s)\n", addr, cfg.Storage.Backend)
			_, _ = fmt.Fprintln(cc.Out, "Press Ctrl+C to stop")
		case <-ctx.Done():
		}
	}()

	return server.Serve(ctx)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

