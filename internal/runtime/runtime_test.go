package runtime

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/snapshot"
	"github.com/caesium-cloud/lgflow/internal/tablestore/memory"
	"github.com/caesium-cloud/lgflow/internal/tablestore/sqlstore"
	"github.com/caesium-cloud/lgflow/internal/taskid"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type RuntimeSuite struct {
	suite.Suite
}

func TestRuntimeSuite(t *testing.T) {
	suite.Run(t, new(RuntimeSuite))
}

func (s *RuntimeSuite) vars() env.Environment {
	return env.Environment{
		Store:              "sql",
		DatabaseType:       "sqlite",
		DatabaseDSN:        fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Concurrency:        "optimistic",
		IDScheme:           "sequential",
		Timezone:           "Africa/Cairo",
		DegradeOnLoadError: true,
		Directory:          "sql",
	}
}

func (s *RuntimeSuite) TestBuildSQL() {
	rt, err := Build(context.Background(), s.vars())
	s.Require().NoError(err)
	defer rt.Close()

	s.NotNil(rt.DB)
	s.IsType(&sqlstore.Store{}, rt.Store)
	s.IsType(&directory.SQL{}, rt.Directory)
	s.Equal(snapshot.ModeOptimistic, rt.Repo.Mode())

	snap, err := rt.Repo.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(snap.Records)
}

func (s *RuntimeSuite) TestBuildMemoryYAMLSkipsDatabase() {
	vars := s.vars()
	vars.Store = "memory"
	vars.Directory = "yaml"
	vars.UsersFile = filepath.Join(s.T().TempDir(), "users.yaml")

	rt, err := Build(context.Background(), vars)
	s.Require().NoError(err)
	defer rt.Close()

	s.Nil(rt.DB)
	s.IsType(&memory.Store{}, rt.Store)
	s.IsType(&directory.YAML{}, rt.Directory)
}

func (s *RuntimeSuite) TestBuildRejectsUnknownStore() {
	vars := s.vars()
	vars.Store = "sheets"
	_, err := Build(context.Background(), vars)
	s.Error(err)
}

func (s *RuntimeSuite) TestBuildRepositoryRejectsMode() {
	vars := s.vars()
	vars.Concurrency = "pessimistic"
	_, err := BuildRepository(vars, memory.New(nil))
	s.Error(err)
}

func (s *RuntimeSuite) TestBuildEngine() {
	vars := s.vars()
	clock := func() time.Time { return time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC) }

	engine, err := BuildEngine(vars, clock)
	s.Require().NoError(err)
	s.Equal(taskid.SchemeSequential, engine.IDs.Scheme())
	s.Equal("02-Mar-2026", engine.Today())

	vars.IDScheme = "uuid"
	engine, err = BuildEngine(vars, clock)
	s.Require().NoError(err)
	s.Equal(taskid.SchemeUUID, engine.IDs.Scheme())
}

func (s *RuntimeSuite) TestBuildDirectory() {
	_, err := BuildDirectory(s.vars(), nil)
	s.Error(err)

	vars := s.vars()
	vars.Directory = "ldap"
	_, err = BuildDirectory(vars, nil)
	s.Error(err)
}

func (s *RuntimeSuite) TestBuildBackup() {
	vars := s.vars()
	b, err := BuildBackup(vars, memory.New(nil))
	s.Require().NoError(err)
	s.Nil(b)

	vars.BackupCron = "0 2 * * *"
	vars.BackupPath = filepath.Join(s.T().TempDir(), "backup.csv")
	b, err = BuildBackup(vars, memory.New(nil))
	s.Require().NoError(err)
	s.NotNil(b)

	vars.BackupCron = "every night"
	_, err = BuildBackup(vars, memory.New(nil))
	s.Error(err)
}
