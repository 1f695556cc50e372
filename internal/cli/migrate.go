package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	applog "mykharche/internal/log"
	"mykharche/internal/storage"
)

// CmdMigrate applies the draft store schema to the SQLite database.
var CmdMigrate = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the SQLite draft store migrations",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Sources: cli.EnvVars("SQLITE_DB_PATH"),
			Value:   "./data/mykharche.db",
			Usage:   "path of the SQLite draft database",
		},
		logLevelFlag,
		logFormatFlag,
	},
	Action: migrate,
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	LoadEnvFile()
	logger := SetupLogger(cmd.String("log-level"), cmd.String("log-format")).
		WithComponent(applog.ComponentStorage)

	dbPath := cmd.String("db")
	if dbPath == "" {
		return fmt.Errorf("db is required (set via --db or SQLITE_DB_PATH env var)")
	}

	version, err := storage.MigrateUp(dbPath)
	if err != nil {
		logger.ErrorContext(ctx, "Migration failed", "db_path", dbPath, applog.FieldError, err)
		return err
	}
	logger.InfoContext(ctx, "Draft schema up to date", "db_path", dbPath, "version", version)
	return nil
}
