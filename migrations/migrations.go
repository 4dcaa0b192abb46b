// Package migrations embeds the schema of each service and applies it with
// golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed orders/*.sql inventory/*.sql
var files embed.FS

const (
	Orders    = "orders"
	Inventory = "inventory"
)

// DatabaseURL converts a service DSN into the URL golang-migrate expects.
// Postgres DSNs must already be URLs; SQLite DSNs are file paths. Each set
// tracks its version in its own table so sets can share a database.
func DatabaseURL(driver, dsn, set string) (string, error) {
	var raw string
	switch driver {
	case "postgres":
		raw = dsn
	case "sqlite":
		raw = "sqlite://" + dsn
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("x-migrations-table", set+"_schema_migrations")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// New builds a migrator for the named migration set. The caller owns the
// returned instance and must Close it.
func New(driver, dsn, set string) (*migrate.Migrate, error) {
	databaseURL, err := DatabaseURL(driver, dsn, set)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(files, set)
	if err != nil {
		return nil, fmt.Errorf("open migrations %s: %w", set, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// Up applies all pending migrations of set. Having nothing to apply is not an
// error.
func Up(driver, dsn, set string) error {
	m, err := New(driver, dsn, set)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", set, err)
	}
	return nil
}
