package sqlstore

import (
	"context"
	"testing"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type SQLStoreTestSuite struct {
	suite.Suite
	db    *gorm.DB
	store *Store
}

func (s *SQLStoreTestSuite) SetupTest() {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(Migrate(db))
	s.db = db
	s.store = New(db, "tasks")
}

func (s *SQLStoreTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func sample() *tablestore.Table {
	return &tablestore.Table{
		Columns: []string{"task_id", "lg_number", "amount", "pending_reason"},
		Rows: [][]string{
			{"05-Mar-2025-001", "LG100", "1000", ""},
			{"05-Mar-2025-002", "LG100", "200", "awaiting stamp"},
			{"06-Mar-2025-001", "LG200", "50.5", ""},
		},
	}
}

func (s *SQLStoreTestSuite) TestLoadEmpty() {
	t, err := s.store.LoadAll(context.Background())
	s.Require().NoError(err)
	s.Empty(t.Columns)
	s.Empty(t.Rows)
	s.Zero(t.Revision)
}

func (s *SQLStoreTestSuite) TestReplaceThenLoadRoundTrips() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sample()))

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), got.Revision)

	want := sample()
	if diff := cmp.Diff(want.Columns, got.Columns); diff != "" {
		s.Failf("columns mismatch", "(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Rows, got.Rows); diff != "" {
		s.Failf("rows mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *SQLStoreTestSuite) TestReplaceShrinksTable() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceAll(ctx, sample()))

	smaller := sample()
	smaller.Rows = smaller.Rows[:1]
	s.Require().NoError(s.store.ReplaceAll(ctx, smaller))

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Len(got.Rows, 1)
	s.Equal(int64(2), got.Revision)

	var cells int64
	s.Require().NoError(s.db.Model(&SheetCell{}).Count(&cells).Error)
	s.Equal(int64(4), cells)
}

func (s *SQLStoreTestSuite) TestReplaceIf() {
	ctx := context.Background()
	s.Require().NoError(s.store.ReplaceIf(ctx, sample(), 0))

	err := s.store.ReplaceIf(ctx, &tablestore.Table{Columns: []string{"task_id"}}, 0)
	s.ErrorIs(err, tablestore.ErrRevisionMismatch)

	got, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Len(got.Rows, 3)

	s.Require().NoError(s.store.ReplaceIf(ctx, &tablestore.Table{Columns: []string{"task_id"}}, got.Revision))
	got, err = s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Empty(got.Rows)
	s.Equal([]string{"task_id"}, got.Columns)
}

func (s *SQLStoreTestSuite) TestSheetsAreIsolated() {
	ctx := context.Background()
	users := New(s.db, "users")

	s.Require().NoError(s.store.ReplaceAll(ctx, sample()))
	s.Require().NoError(users.ReplaceAll(ctx, &tablestore.Table{
		Columns: []string{"username", "role"},
		Rows:    [][]string{{"adam", "Authorizer"}},
	}))

	got, err := users.LoadAll(ctx)
	s.Require().NoError(err)
	s.Equal([][]string{{"adam", "Authorizer"}}, got.Rows)

	tasks, err := s.store.LoadAll(ctx)
	s.Require().NoError(err)
	s.Len(tasks.Rows, 3)
}

func (s *SQLStoreTestSuite) TestClosedDatabaseIsUnavailable() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	_, err = s.store.LoadAll(context.Background())
	s.ErrorIs(err, lgerr.ErrStoreUnavailable)

	err = s.store.ReplaceAll(context.Background(), sample())
	s.ErrorIs(err, lgerr.ErrStoreUnavailable)
}

func TestSQLStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLStoreTestSuite))
}
