package migrations

import (
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/lexgraph/backend/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Up applies all pending migrations from dir (for example "migrations")
// to the database at databaseURL.
func Up(dir, databaseURL string) error {
	m, err := migrate.New(sourceURL(dir), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("[Migrate] Schema up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logger.Info("[Migrate] Schema migrated", "version", version, "dirty", dirty)
	}
	return nil
}

func sourceURL(dir string) string {
	if dir == "" {
		dir = "migrations"
	}
	return "file://" + dir
}
