package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/pkordes/libris/cmd/libris/output"
	"github.com/pkordes/libris/migrations"
)

var (
	// Migrate flags
	dbURL      string
	steps      int
	jsonOutput bool
)

// migrateCmd groups the migration subcommands
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run PostgreSQL schema migrations",
	Long: `Run the embedded schema migrations against a PostgreSQL database.
The SQLite and MySQL stores manage their own schema on startup.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back migrations
  status  - Show migration status`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbURL == "" {
			dbURL = os.Getenv("DATABASE_URL")
		}
		if dbURL == "" {
			return errors.New("--db flag or DATABASE_URL is required")
		}
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := migrateUp(cmd.Context(), dbURL)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(results) == 0 {
			output.Info(w, "Database is up to date")
			return nil
		}
		for _, r := range results {
			output.Success(w, "Applied %s (%s)", r.Source.Path, r.Duration)
		}
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back applied migrations, newest first.

Examples:
  libris migrate down             # Roll back the last migration
  libris migrate down --steps 2   # Roll back the last two`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if steps < 1 {
			return errors.New("--steps must be at least 1")
		}
		return withProvider(cmd.Context(), dbURL, func(p *goose.Provider) error {
			w := cmd.OutOrStdout()
			for i := 0; i < steps; i++ {
				r, err := p.Down(cmd.Context())
				if errors.Is(err, goose.ErrNoNextVersion) {
					output.Warning(w, "No more migrations to roll back")
					return nil
				}
				if err != nil {
					return fmt.Errorf("roll back: %w", err)
				}
				output.Success(w, "Rolled back %s (%s)", r.Source.Path, r.Duration)
			}
			return nil
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProvider(cmd.Context(), dbURL, func(p *goose.Provider) error {
			statuses, err := p.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("read status: %w", err)
			}
			if jsonOutput {
				return writeStatusJSON(cmd.OutOrStdout(), statuses)
			}
			return writeStatusTable(cmd.OutOrStdout(), statuses)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL URL (defaults to $DATABASE_URL)")
	migrateDownCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")
	migrateStatusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// withProvider opens a database/sql handle for goose and closes it after fn.
func withProvider(ctx context.Context, url string, fn func(*goose.Provider) error) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	p, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(p)
}

// migrateUp applies every pending migration. It is shared with serve's
// MIGRATE_ON_START.
func migrateUp(ctx context.Context, url string) ([]*goose.MigrationResult, error) {
	var results []*goose.MigrationResult
	err := withProvider(ctx, url, func(p *goose.Provider) error {
		var err error
		results, err = p.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
	return results, err
}

type statusRow struct {
	Version   int64  `json:"version"`
	Path      string `json:"path"`
	State     string `json:"state"`
	AppliedAt string `json:"appliedAt,omitempty"`
}

func statusRows(statuses []*goose.MigrationStatus) []statusRow {
	rows := make([]statusRow, 0, len(statuses))
	for _, s := range statuses {
		row := statusRow{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			State:   string(s.State),
		}
		if !s.AppliedAt.IsZero() {
			row.AppliedAt = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, row)
	}
	return rows
}

func writeStatusJSON(w io.Writer, statuses []*goose.MigrationStatus) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statusRows(statuses))
}

func writeStatusTable(w io.Writer, statuses []*goose.MigrationStatus) error {
	output.Section(w, "Migration Status")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tVERSION\tMIGRATION\tAPPLIED AT")
	for _, r := range statusRows(statuses) {
		applied := r.AppliedAt
		if applied == "" {
			applied = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", output.StatusIcon(r.State), r.Version, r.Path, applied)
	}
	return tw.Flush()
}
