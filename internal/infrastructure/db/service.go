package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	badgerdb "github.com/beastmint/mintd/internal/infrastructure/db/badger"
	pgdb "github.com/beastmint/mintd/internal/infrastructure/db/postgres"
	sqlitedb "github.com/beastmint/mintd/internal/infrastructure/db/sqlite"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigration embed.FS

var mintRecordStoreTypes = map[string]func(...interface{}) (domain.MintRecordRepo, error){
	"badger":   badgerdb.NewMintRecordRepository,
	"sqlite":   sqlitedb.NewMintRecordRepository,
	"postgres": pgdb.NewMintRecordRepository,
}

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	mintRecordStore domain.MintRecordRepo
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	mintRecordStoreFactory, ok := mintRecordStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var mintRecordStore domain.MintRecordRepo
	var err error

	switch config.DataStoreType {
	case "badger":
		mintRecordStore, err = mintRecordStoreFactory(config.DataStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open mint record store: %s", err)
		}

	case "postgres":
		opts, err := pgOptions(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}

		db, err := pgdb.Open(opts, pgMigration, "postgres/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}

		mintRecordStore, err = mintRecordStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open mint record store: %s", err)
		}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		db, err := openSqlite(baseDir)
		if err != nil {
			return nil, err
		}

		mintRecordStore, err = mintRecordStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open mint record store: %s", err)
		}
	}

	return &service{mintRecordStore}, nil
}

func (s *service) MintRecords() domain.MintRecordRepo {
	return s.mintRecordStore
}

func (s *service) Close() {
	s.mintRecordStore.Close()
}

// pgOptions reads [dsn, autoCreate] with an optional connect timeout.
func pgOptions(config []interface{}) (pgdb.Options, error) {
	if len(config) != 2 && len(config) != 3 {
		return pgdb.Options{}, fmt.Errorf("invalid data store config for postgres")
	}

	dsn, ok := config[0].(string)
	if !ok || len(dsn) <= 0 {
		return pgdb.Options{}, fmt.Errorf("invalid DSN for postgres")
	}
	autoCreate, ok := config[1].(bool)
	if !ok {
		return pgdb.Options{}, fmt.Errorf("invalid autocreate flag for postgres")
	}

	opts := pgdb.Options{Dsn: dsn, AutoCreate: autoCreate}
	if len(config) == 3 {
		timeout, ok := config[2].(time.Duration)
		if !ok || timeout <= 0 {
			return pgdb.Options{}, fmt.Errorf("invalid connect timeout for postgres")
		}
		opts.ConnectTimeout = timeout
	}
	return opts, nil
}

func openSqlite(baseDir string) (*sql.DB, error) {
	dbFile := filepath.Join(baseDir, sqliteDbFile)
	db, err := sqlitedb.OpenDb(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %s", err)
	}

	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init driver: %s", err)
	}

	source, err := iofs.New(migrations, "sqlite/migration")
	if err != nil {
		return nil, fmt.Errorf("failed to embed migrations: %s", err)
	}

	if err := runMigrations(source, "mintdb", driver); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(src source.Driver, dbName string, driver database.Driver) error {
	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create %s migration instance: %s", dbName, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run %s migrations: %s", dbName, err)
	}
	return nil
}
