// Package main implements the entry point for the FreshNest API server,
// which handles cleaning bookings, gift cards, special offers and
// subscriptions for the home-cleaning platform.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/freshnest/freshnest-api/internal/config"
	"github.com/freshnest/freshnest-api/internal/platform/logger"
	"github.com/freshnest/freshnest-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command instead of the server (up, down, status)")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// run loads configuration, prepares shared infrastructure and either
// executes the requested migration command or starts the server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("error closing database connection", "error", err)
			}
		}()
		return runMigrationCommand(db, migrateCmd)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(context.Background())
}

// runMigrationCommand dispatches a single migration operation and exits.
func runMigrationCommand(db *sql.DB, command string) error {
	switch command {
	case "up":
		return postgres.MigrateUp(db)
	case "down":
		return postgres.MigrateDown(db)
	case "status":
		return postgres.MigrationStatus(db)
	default:
		fmt.Fprintf(os.Stderr, "unknown migration command %q (want up, down or status)\n", command)
		os.Exit(2)
		return nil
	}
}
