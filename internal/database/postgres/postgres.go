// Package postgres stores links in PostgreSQL through sqlx and the pgx driver.
package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/nexxeln/website/pkg/postgres"
)

const uniqueViolationErrCode = "23505"

//go:embed migrations/*.sql
var migrationsFS embed.FS

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

// Migrate brings the links schema up to date.
func Migrate(db *sqlx.DB) error {
	const op = "database.postgres.Migrate"

	if err := postgres.RunMigrations(db.DB, migrationsFS, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
