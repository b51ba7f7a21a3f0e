package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const (
	driverName = "postgres"
	// maintenanceDb is the database used to issue CREATE DATABASE.
	maintenanceDb = "postgres"

	DefaultConnectTimeout = 5 * time.Second
)

// undefinedDatabase is the sqlstate of a connection to a missing database.
const undefinedDatabase = pq.ErrorCode("3D000")

type Options struct {
	Dsn string
	// AutoCreate creates the database named in Dsn when it does not exist.
	AutoCreate     bool
	ConnectTimeout time.Duration
}

// Open connects to the mint record database and brings its schema up to
// date with the migrations found under dir in migrations.
func Open(opts Options, migrations fs.FS, dir string) (*sql.DB, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}

	db, err := sql.Open(driverName, opts.Dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := ping(ctx, db, opts); err != nil {
		// nolint
		db.Close()
		return nil, fmt.Errorf("postgres unreachable within %s: %w", opts.ConnectTimeout, err)
	}

	if err := migrateUp(db, migrations, dir); err != nil {
		// nolint
		db.Close()
		return nil, err
	}
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, opts Options) error {
	err := db.PingContext(ctx)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !opts.AutoCreate || !errors.As(err, &pqErr) || pqErr.Code != undefinedDatabase {
		return err
	}

	maintenanceDsn, name, err := splitDatabase(opts.Dsn)
	if err != nil {
		return fmt.Errorf("cannot create missing database: %w", err)
	}
	if err := createDatabase(ctx, maintenanceDsn, name); err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func createDatabase(ctx context.Context, maintenanceDsn, name string) error {
	root, err := sql.Open(driverName, maintenanceDsn)
	if err != nil {
		return err
	}
	// nolint
	defer root.Close()

	log.WithField("database", name).Info("creating missing postgres database")
	if _, err := root.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	return nil
}

// splitDatabase returns dsn pointed at the maintenance database along with
// the database name it originally targeted. Both url and key=value forms are
// accepted.
func splitDatabase(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", err
		}
		name := strings.TrimPrefix(u.Path, "/")
		if len(name) <= 0 {
			return "", "", fmt.Errorf("dsn does not name a database")
		}
		u.Path = "/" + maintenanceDb
		return u.String(), name, nil
	}

	fields := strings.Fields(dsn)
	name := ""
	for i, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != "dbname" {
			continue
		}
		name = strings.Trim(value, "'")
		fields[i] = "dbname=" + maintenanceDb
	}
	if len(name) <= 0 {
		return "", "", fmt.Errorf("dsn does not name a database")
	}
	return strings.Join(fields, " "), name, nil
}

func migrateUp(db *sql.DB, migrations fs.FS, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to init postgres migration driver: %w", err)
	}
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to load postgres migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create postgres migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run postgres migrations: %w", err)
	}
	return nil
}
