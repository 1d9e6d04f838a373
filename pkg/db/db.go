package db

import (
	"sync"

	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	mu   sync.Mutex
	conn *gorm.DB
)

// Connection returns the process-wide database handle, opening it
// from the environment on first use.
func Connection() *gorm.DB {
	mu.Lock()
	defer mu.Unlock()

	if conn != nil {
		return conn
	}

	vars := env.Variables()
	gdb, err := Open(vars.DatabaseType, vars.DatabaseDSN)
	if err != nil {
		log.Fatal("failed to connect to database", "type", vars.DatabaseType, "error", err)
	}

	conn = gdb
	return conn
}

// Open connects to a database of the given type.
func Open(dbType, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var dialector gorm.Dialector
	switch dbType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, errors.Errorf("unsupported database type %q", dbType)
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", dbType)
	}

	if dbType != "postgres" {
		// sqlite serialises writers; a single connection avoids
		// SQLITE_BUSY between pooled handles.
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	return gdb, nil
}

// Migrate creates or updates the tables for models.
func Migrate(gdb *gorm.DB, models ...any) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

// Close releases the process-wide handle if one was opened.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	conn = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
