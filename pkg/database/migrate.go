package database

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// MigrationResult describes the schema state after RunMigrations
type MigrationResult struct {
	Version uint
	Dirty   bool
	Applied bool
}

// RunMigrations applies all pending migrations found in source (an embedded
// directory of *.up.sql / *.down.sql files) to the database at url.
func RunMigrations(source fs.FS, dir, url string) (MigrationResult, error) {
	src, err := iofs.New(source, dir)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("migration init: %w", err)
	}
	defer m.Close()

	applied := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return MigrationResult{}, fmt.Errorf("migration up: %w", err)
		}
		applied = false
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("migration version: %w", err)
	}
	return MigrationResult{Version: version, Dirty: dirty, Applied: applied}, nil
}
