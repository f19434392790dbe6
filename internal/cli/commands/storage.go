package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/ledgerdesk/internal/storage"
)

// ErrNoMaxAge is returned by storage purge when no age limit is configured.
var ErrNoMaxAge = errors.New("storage.max_age is 0; pass --older-than")

// NewStorageCommand creates the storage command and its subcommands.
func NewStorageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and maintain the session database",
		Long: `Inspect and maintain the SQLite session database at storage.path.

The database holds the command-line session and, with the sqlite backend,
the sessions of the dashboard.`,
	}
	cmd.AddCommand(newStorageInfoCommand(), newStoragePurgeCommand())
	return cmd
}

func newStorageInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the session database path and schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			db, err := storage.OpenSQLite(cc.Cfg.Storage.Path, cc.Logger)
			if err != nil {
				return fmt.Errorf("failed to open session storage: %w", err)
			}
			defer func() { _ = db.Close() }()

			version, err := db.SchemaVersion()
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cc.Out)
			t.SetStyle(table.StyleLight)
			t.AppendRows([]table.Row{
				{"Path", db.Path()},
				{"Schema version", version},
				{"Max age", describeMaxAge(cc.Cfg.Storage.MaxAge)},
			})
			t.Render()
			return nil
		},
	}
}

func newStoragePurgeCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions idle for longer than the max age",
		Example: `  ledgerdesk storage purge
  ledgerdesk storage purge --older-than 24h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cc := NewCommandContext(cmd)

			age := cc.Cfg.Storage.MaxAge
			if cmd.Flags().Changed("older-than") {
				age = olderThan
			}
			if age <= 0 {
				return ErrNoMaxAge
			}

			db, err := storage.OpenSQLite(cc.Cfg.Storage.Path, cc.Logger)
			if err != nil {
				return fmt.Errorf("failed to open session storage: %w", err)
			}
			defer func() { _ = db.Close() }()

			n, err := db.Purge(ctx, time.Now().Add(-age))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cc.Out, "Purged %d items older than %s\n", n, age)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age limit (default storage.max_age)")
	return cmd
}

func describeMaxAge(d time.Duration) string {
	if d <= 0 {
		return "keep forever"
	}
	return d.String()
}
