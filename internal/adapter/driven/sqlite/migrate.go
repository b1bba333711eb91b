package sqlite

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schema embed.FS

// schemaTable keeps migrate's bookkeeping apart from the report tables.
const schemaTable = "trustscore_schema_version"

// Migrate brings the report schema up to the newest embedded version.
// Applied versions are skipped, so it is safe on every start.
func (db *DB) Migrate() error {
	src, err := iofs.New(schema, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded schema: %w", err)
	}

	target, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{MigrationsTable: schemaTable})
	if err != nil {
		return fmt.Errorf("prepare schema target: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return fmt.Errorf("prepare migrator: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
