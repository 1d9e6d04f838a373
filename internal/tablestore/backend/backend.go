// Package backend opens the table store named by the environment.
package backend

import (
	"context"

	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/internal/tablestore/csvfile"
	"github.com/caesium-cloud/lgflow/internal/tablestore/memory"
	"github.com/caesium-cloud/lgflow/internal/tablestore/redisstore"
	"github.com/caesium-cloud/lgflow/internal/tablestore/sqlstore"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	KindSQL    = "sql"
	KindCSV    = "csv"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Sheet is the sheet name the task table is stored under.
const Sheet = "tasks"

// Config selects and locates a store.
type Config struct {
	Kind      string
	CSVPath   string
	RedisAddr string
	RedisKey  string
	// DB is required for KindSQL; it must already be migrated.
	DB *gorm.DB
}

// FromEnv builds a Config from the processed environment.
func FromEnv(vars env.Environment, db *gorm.DB) Config {
	return Config{
		Kind:      vars.Store,
		CSVPath:   vars.CSVPath,
		RedisAddr: vars.RedisAddr,
		RedisKey:  vars.RedisKey,
		DB:        db,
	}
}

// Open returns the configured store and a function releasing it.
func Open(ctx context.Context, cfg Config) (tablestore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case KindSQL, "":
		if cfg.DB == nil {
			return nil, nil, errors.New("sql store requires a database")
		}
		return sqlstore.New(cfg.DB, Sheet), noop, nil
	case KindCSV:
		return csvfile.New(cfg.CSVPath), noop, nil
	case KindRedis:
		s, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisKey)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to connect to redis")
		}
		return s, s.Close, nil
	case KindMemory:
		return memory.New(nil), noop, nil
	}
	return nil, nil, errors.Errorf("unknown table store %q", cfg.Kind)
}
