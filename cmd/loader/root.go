package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"locator/config"
	"locator/internal/errors"
	"locator/internal/infra/etl"
	logs "locator/internal/infra/log"
	"locator/internal/infra/persistence/sqlstore"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"gorm.io/gorm"

	// Bucket drivers for gs:// and s3:// sources.
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

const defaultCSV = "locations.csv"

// app holds what every subcommand needs once the root command has run.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *gorm.DB
	loader    *etl.Loader
	inspector *etl.Inspector
}

// open wires config, logger and store. opts must provide *config.Config and *slog.Logger.
func (a *app) open(opts ...fx.Option) error {
	fxApp := fx.New(
		fx.NopLogger,
		fx.Options(opts...),
		fx.Provide(
			openDB,
			etl.NewLoader,
			etl.NewInspector,
		),
		fx.Populate(&a.cfg, &a.logger, &a.db, &a.loader, &a.inspector),
	)

	return errors.Wrap(fxApp.Err(), "failed to initialize loader")
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB")
	}

	return sqlDB.Close()
}

// openDB opens the store without the server's lifecycle hooks.
func openDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	return sqlstore.Open(cfg, logger)
}

// newLogger writes to stderr so reports on stdout stay clean.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logs.NewWithWriter(cfg.Env.Log, os.Stderr)
}

func defaultOptions() []fx.Option {
	return []fx.Option{fx.Provide(config.New, newLogger)}
}

func newRootCmd(opts ...fx.Option) *cobra.Command {
	if len(opts) == 0 {
		opts = defaultOptions()
	}

	a := &app{}
	rootCmd := &cobra.Command{
		Use:          "loader",
		Short:        "Load and inspect the UK postcode location table",
		Long:         "Streams the postcode CSV into the configured store, builds the lookup indexes and reports on the loaded data.",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.open(opts...)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	rootCmd.AddCommand(
		newLoadCmd(a),
		newInfoCmd(a),
		newDuplicatesCmd(a),
		newTopCmd(a),
		newIndexCmd(a),
	)

	return rootCmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func csvArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return defaultCSV
}
