// Package runtime assembles lgflow's components from the environment.
package runtime

import (
	"context"
	"time"

	"github.com/caesium-cloud/lgflow/internal/backup"
	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/snapshot"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/internal/tablestore/backend"
	"github.com/caesium-cloud/lgflow/internal/tablestore/csvfile"
	"github.com/caesium-cloud/lgflow/internal/tablestore/sqlstore"
	"github.com/caesium-cloud/lgflow/internal/taskid"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/caesium-cloud/lgflow/pkg/db"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	DirectorySQL  = "sql"
	DirectoryYAML = "yaml"
)

// Runtime holds the wired components of one lgflow process.
type Runtime struct {
	DB        *gorm.DB
	Store     tablestore.Store
	Repo      *snapshot.Repository
	Engine    *workflow.Engine
	Directory directory.Directory

	closers []func() error
}

// Build opens the database, the table store and the directory named by
// vars. The database is opened only when a component needs it.
func Build(ctx context.Context, vars env.Environment) (*Runtime, error) {
	rt := &Runtime{}

	if needsDB(vars) {
		gdb, err := db.Open(vars.DatabaseType, vars.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(gdb, append(append([]any{}, sqlstore.Models...), models.All...)...); err != nil {
			return nil, err
		}
		rt.DB = gdb
		rt.closers = append(rt.closers, func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
	}

	store, closeStore, err := backend.Open(ctx, backend.FromEnv(vars, rt.DB))
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Store = store
	rt.closers = append(rt.closers, closeStore)

	if rt.Repo, err = BuildRepository(vars, store); err != nil {
		rt.Close()
		return nil, err
	}

	if rt.Engine, err = BuildEngine(vars, nil); err != nil {
		rt.Close()
		return nil, err
	}

	if rt.Directory, err = BuildDirectory(vars, rt.DB); err != nil {
		rt.Close()
		return nil, err
	}

	return rt, nil
}

// Close releases everything Build opened, newest first.
func (rt *Runtime) Close() error {
	var first error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	rt.closers = nil
	return first
}

// BuildRepository wraps store with the configured concurrency mode.
func BuildRepository(vars env.Environment, store tablestore.Store) (*snapshot.Repository, error) {
	mode, err := snapshot.ParseMode(vars.Concurrency)
	if err != nil {
		return nil, err
	}
	return snapshot.New(store, snapshot.Options{
		Mode:               mode,
		DegradeOnLoadError: vars.DegradeOnLoadError,
	}), nil
}

// BuildEngine returns a workflow engine using the configured id scheme
// and timezone. A nil clock means time.Now.
func BuildEngine(vars env.Environment, clock func() time.Time) (*workflow.Engine, error) {
	loc := vars.Location()
	ids, err := taskid.New(vars.IDScheme, clock, loc)
	if err != nil {
		return nil, err
	}
	return workflow.New(ids, clock, loc), nil
}

// BuildDirectory returns the configured user directory.
func BuildDirectory(vars env.Environment, gdb *gorm.DB) (directory.Directory, error) {
	switch vars.Directory {
	case DirectorySQL, "":
		if gdb == nil {
			return nil, errors.New("sql directory requires a database")
		}
		return directory.NewSQL(gdb), nil
	case DirectoryYAML:
		return directory.NewYAML(vars.UsersFile), nil
	}
	return nil, errors.Errorf("unknown directory %q", vars.Directory)
}

// BuildBackup returns the scheduled CSV export of store, or nil when no
// schedule is configured.
func BuildBackup(vars env.Environment, store tablestore.Store) (*backup.Backup, error) {
	if vars.BackupCron == "" {
		return nil, nil
	}
	return backup.New(vars.BackupCron, vars.Location(), store, csvfile.New(vars.BackupPath))
}

func needsDB(vars env.Environment) bool {
	return vars.Store == backend.KindSQL || vars.Store == "" ||
		vars.Directory == DirectorySQL || vars.Directory == ""
}
