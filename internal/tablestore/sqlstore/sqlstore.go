// Package sqlstore keeps the task table in a relational database as
// sheet cells. Each replace runs in one transaction so a failed write
// leaves the committed table intact.
package sqlstore

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const batchSize = 500

// SheetColumn is one header cell of a sheet.
type SheetColumn struct {
	Sheet    string `gorm:"primaryKey;type:text"`
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	Name     string `gorm:"type:text;not null"`
}

// SheetCell is one value of a sheet.
type SheetCell struct {
	Sheet    string `gorm:"primaryKey;type:text"`
	RowIndex int    `gorm:"primaryKey;autoIncrement:false"`
	ColIndex int    `gorm:"primaryKey;autoIncrement:false"`
	Value    string `gorm:"type:text;not null"`
}

// SheetRevision counts the replaces applied to a sheet.
type SheetRevision struct {
	Sheet     string `gorm:"primaryKey;type:text"`
	Revision  int64  `gorm:"not null"`
	UpdatedAt time.Time
}

// Models lists the tables the store needs migrated.
var Models = []any{&SheetColumn{}, &SheetCell{}, &SheetRevision{}}

type Store struct {
	db    *gorm.DB
	sheet string
}

// New returns a store for the named sheet. Several sheets can share
// one database.
func New(db *gorm.DB, sheet string) *Store {
	if db == nil {
		panic("sqlstore requires a database connection")
	}
	return &Store{db: db, sheet: sheet}
}

// Migrate creates the sheet tables when they are missing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

func (s *Store) LoadAll(ctx context.Context) (*tablestore.Table, error) {
	var (
		columns []SheetColumn
		cells   []SheetCell
		rev     SheetRevision
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sheet = ?", s.sheet).Order("position ASC").Find(&columns).Error; err != nil {
			return err
		}
		if err := tx.Where("sheet = ?", s.sheet).Order("row_index ASC, col_index ASC").Find(&cells).Error; err != nil {
			return err
		}
		err := tx.Where("sheet = ?", s.sheet).First(&rev).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, s.unavailable("load", err)
	}

	t := &tablestore.Table{
		Columns:  make([]string, len(columns)),
		Revision: rev.Revision,
	}
	for i, c := range columns {
		t.Columns[i] = c.Name
	}

	rows := map[int][]string{}
	for _, c := range cells {
		row, ok := rows[c.RowIndex]
		if !ok {
			row = make([]string, len(t.Columns))
		}
		for len(row) <= c.ColIndex {
			row = append(row, "")
		}
		row[c.ColIndex] = c.Value
		rows[c.RowIndex] = row
	}

	indexes := make([]int, 0, len(rows))
	for i := range rows {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	t.Rows = make([][]string, 0, len(indexes))
	for _, i := range indexes {
		t.Rows = append(t.Rows, rows[i])
	}

	return t, nil
}

func (s *Store) ReplaceAll(ctx context.Context, t *tablestore.Table) error {
	return s.replace(ctx, t, nil)
}

func (s *Store) ReplaceIf(ctx context.Context, t *tablestore.Table, revision int64) error {
	return s.replace(ctx, t, &revision)
}

func (s *Store) replace(ctx context.Context, t *tablestore.Table, expected *int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(SheetRevision{Sheet: s.sheet}).FirstOrCreate(&SheetRevision{}).Error; err != nil {
			return err
		}

		q := tx.Model(&SheetRevision{}).Where("sheet = ?", s.sheet)
		if expected != nil {
			q = q.Where("revision = ?", *expected)
		}

		result := q.Updates(map[string]interface{}{
			"revision":   gorm.Expr("revision + 1"),
			"updated_at": time.Now().UTC(),
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tablestore.ErrRevisionMismatch
		}

		if err := tx.Where("sheet = ?", s.sheet).Delete(&SheetCell{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sheet = ?", s.sheet).Delete(&SheetColumn{}).Error; err != nil {
			return err
		}

		if len(t.Columns) > 0 {
			columns := make([]SheetColumn, len(t.Columns))
			for i, name := range t.Columns {
				columns[i] = SheetColumn{Sheet: s.sheet, Position: i, Name: name}
			}
			if err := tx.CreateInBatches(columns, batchSize).Error; err != nil {
				return err
			}
		}

		cells := make([]SheetCell, 0, len(t.Rows)*len(t.Columns))
		for r, row := range t.Rows {
			for c, value := range row {
				cells = append(cells, SheetCell{Sheet: s.sheet, RowIndex: r, ColIndex: c, Value: value})
			}
		}
		if len(cells) > 0 {
			if err := tx.CreateInBatches(cells, batchSize).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if errors.Is(err, tablestore.ErrRevisionMismatch) {
		return err
	}
	if err != nil {
		return s.unavailable("replace", err)
	}

	return nil
}

func (s *Store) unavailable(op string, err error) error {
	if isBusy(err) {
		log.Warn("table store busy", "sheet", s.sheet, "op", op, "error", err)
	}
	return lgerr.Unavailable(op, err)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
