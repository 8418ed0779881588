package repositories

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

// Open connects to the board database. SQLite handles are limited to a single
// connection so writers never contend for the file lock, and write timestamps
// in the sqlite text format unless the DSN picks another one.
func Open(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(SQLitePath(dsn)); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, errors.Wrap(err, "failed to create database directory")
			}
		}
	case DriverPostgres:
	default:
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite && !strings.Contains(dsn, "_time_format=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_time_format=sqlite"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	return db, nil
}

// SQLitePath strips the file: scheme and query parameters from a SQLite DSN.
func SQLitePath(dsn string) string {
	path, _, _ := strings.Cut(dsn, "?")
	return strings.TrimPrefix(path, "file:")
}

func newMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch db.DriverName() {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return nil, errors.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migration driver")
	}

	src, err := iofs.New(migrationsFS, "migrations/"+db.DriverName())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migration instance")
	}
	return m, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(db *sqlx.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to run migrations")
	}
	return nil
}

// MigrateDown reverts every migration, dropping the board table.
func MigrateDown(db *sqlx.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to revert migrations")
	}
	return nil
}

// Backup writes a consistent copy of a SQLite database to path.
func Backup(db *sqlx.DB, path string) error {
	if db.DriverName() != DriverSQLite {
		return errors.Errorf("backup is not supported for %s; use the database's own dump tool", db.DriverName())
	}
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("backup file already exists: %s", path)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, path); err != nil {
		return errors.Wrap(err, "failed to backup database")
	}
	return nil
}
