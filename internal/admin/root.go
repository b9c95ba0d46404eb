// Package admin implements dzakctl, the operator CLI for schema
// migrations, legacy data import and password resets.
package admin

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/dbx"
	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/dmitrijs2005/dzakcloud/internal/server/config"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

var (
	openDB         = dbx.Open
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type options struct {
	configPath string
	dsn        string
}

// env is what every subcommand works with once config is loaded.
type env struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func (e *env) Close() error {
	return e.db.Close()
}

func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dzakctl",
		Short:         "DzakCloud administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to JSON config file")
	root.PersistentFlags().StringVarP(&opts.dsn, "dsn", "d", "", "database connection string")

	root.AddCommand(
		newMigrateCommand(opts),
		newImportCommand(opts),
		newPasswdCommand(opts),
	)
	return root
}

// open loads configuration the same way the server does and connects to
// the database. Flags given to dzakctl win over everything else.
func (o *options) open(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	db, err := openDB(cfg.DatabaseDSN, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}

	return &env{config: cfg, logger: logger.With("module", "dzakctl"), db: db, repomanager: newRepoManager()}, nil
}

func (e *env) migrate(ctx context.Context) error {
	if err := e.repomanager.RunMigrations(ctx, e.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	return nil
}

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
