// Command migrate runs the embedded goose migrations outside the service process.
//
//	migrate [up|down|status|version|redo|reset|up-to VERSION|down-to VERSION]
package main

import (
	"context"
	"log/slog"
	"os"

	"sentinel/config"
	"sentinel/internal/errors"
	"sentinel/internal/infra/persistence/postgres"

	pgLib "github.com/slighter12/go-lib/database/postgres"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	if cfg.Postgres == nil {
		return errors.New("postgres configuration must be provided")
	}

	db, err := pgLib.New(cfg.Postgres)
	if err != nil {
		return errors.Wrap(err, "failed to create PostgreSQL client")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}
	defer sqlDB.Close()

	slog.Info("Running migrations", slog.String("command", command))

	return postgres.RunMigrations(ctx, db, command, args...)
}
