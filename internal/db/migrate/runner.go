// Package migrate applies the gateway's embedded SQL migrations with
// golang-migrate.
package migrate

import (
	"errors"
	"fmt"

	"payment-rail-gateway/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migration directions accepted by Run.
const (
	Up   = "up"
	Down = "down"
)

// ErrNoChange means the schema is already at the target version. Callers
// treat it as success.
var ErrNoChange = migrate.ErrNoChange

// Run applies the embedded migrations in the given direction against dsn.
// Returns ErrNoChange when there is nothing to do.
func Run(dsn, direction string) error {
	if dsn == "" {
		return errors.New("migrate: DATABASE_URL is not set")
	}

	var step func(*migrate.Migrate) error
	switch direction {
	case Up:
		step = (*migrate.Migrate).Up
	case Down:
		step = (*migrate.Migrate).Down
	default:
		return fmt.Errorf("migrate: direction must be %q or %q, got %q", Up, Down, direction)
	}

	src, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	return step(m)
}
