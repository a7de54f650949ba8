package postgres

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsDir is the path of the embedded migration files.
const migrationsDir = "migrations"

// MigrationTableName is the goose bookkeeping table.
const MigrationTableName = "mdquiz_schema_migrations"

// RunMigrations executes the given goose command (up, down, reset, status,
// version) against the embedded migration files.
func RunMigrations(db *sql.DB, command string) error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	goose.SetTableName(MigrationTableName)

	var err error
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "reset":
		err = goose.Reset(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	case "version":
		err = goose.Version(db, migrationsDir)
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, or version)",
			command,
		)
	}

	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	return nil
}
