package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerdesk/internal/auth"
	"github.com/leapstack-labs/ledgerdesk/internal/cli/config"
	"github.com/leapstack-labs/ledgerdesk/internal/session"
	"github.com/leapstack-labs/ledgerdesk/internal/storage"
)

// CLINamespace is the storage namespace of the command-line session.
const CLINamespace = "cli"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

// NewCommandContext collects the config and logger stored by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    config.GetConfig(cmd.Context()),
		Logger: config.GetLogger(cmd.Context()),
		Out:    cmd.OutOrStdout(),
	}
}

// openBackend opens the configured session backend. The cookie backend
// keeps values in the browser, so it has no server-side backend.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case storage.KindCookie:
		return nil, nil
	case storage.KindMemory:
		return storage.NewMemory(), nil
	case storage.KindSQLite:
		db, err := storage.OpenSQLite(cfg.Storage.Path, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	case storage.KindRedis:
		rdb, err := storage.OpenRedis(ctx, storage.RedisConfig{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
			TTL:      cfg.Storage.MaxAge,
		})
		if err != nil {
			return nil, err
		}
		return rdb, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newAuthClient builds the login client from config.
func newAuthClient(cfg *config.Config, logger *slog.Logger) *auth.Client {
	return auth.NewClient(auth.Config{
		BaseURL: cfg.Auth.BaseURL,
		Timeout: cfg.Auth.Timeout,
		Logger:  logger,
	})
}

// cliSession is the session of the command line, kept in SQLite.
type cliSession struct {
	Store *session.Store
	Nav   *session.Recorder
	db    *storage.SQLite
}

func (s *cliSession) Close() error {
	return s.db.Close()
}

// openCLISession restores the command-line session from storage.path.
func openCLISession(ctx context.Context, cc *CommandContext) (*cliSession, error) {
	db, err := storage.OpenSQLite(cc.Cfg.Storage.Path, cc.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	nav := &session.Recorder{}
	store := session.Restore(ctx, db.Namespace(CLINamespace), newAuthClient(cc.Cfg, cc.Logger), nav, session.Options{
		LandingPath: cc.Cfg.Navigation.LandingPath,
		LoginPath:   cc.Cfg.Navigation.LoginPath,
		Logger:      cc.Logger,
	})
	return &cliSession{Store: store, Nav: nav, db: db}, nil
}
