package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
)

// RunMigrations applies the migrations found under path in fsys to db.
// The migrator is not closed: closing it would close db as well.
func RunMigrations(db *sql.DB, fsys fs.FS, path string) error {
	const op = "postgres.RunMigrations"

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("%s: failed to create migration driver: %w", op, err)
	}

	source, err := iofs.New(fsys, path)
	if err != nil {
		return fmt.Errorf("%s: failed to create migration source: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
