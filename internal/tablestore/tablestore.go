// Package tablestore defines the contract of the external table
// service that holds the task table: whole-table read and whole-table
// overwrite, nothing finer grained.
package tablestore

import (
	"context"
	"errors"
)

// ErrRevisionMismatch is returned by ReplaceIf when the table was
// replaced by someone else after the caller's read.
var ErrRevisionMismatch = errors.New("table revision changed")

// Table is a full copy of the stored table. Rows hold display strings
// in the order given by Columns.
type Table struct {
	Columns  []string
	Rows     [][]string
	Revision int64
}

// Store is the whole-table contract every backend satisfies.
type Store interface {
	// LoadAll returns the entire table in insertion order.
	LoadAll(ctx context.Context) (*Table, error)
	// ReplaceAll overwrites the entire table. On failure the
	// previously committed table is left untouched.
	ReplaceAll(ctx context.Context, t *Table) error
}

// Conditional is implemented by stores that can refuse a replace
// when the table revision moved on since it was read.
type Conditional interface {
	Store
	ReplaceIf(ctx context.Context, t *Table, revision int64) error
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}

	out := &Table{
		Columns:  append([]string(nil), t.Columns...),
		Rows:     make([][]string, len(t.Rows)),
		Revision: t.Revision,
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}

	return out
}

// Empty reports whether t holds no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Index maps column names to their position in Columns.
func (t *Table) Index() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}

// Copy replays the content of src into dst.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	t, err := src.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := dst.ReplaceAll(ctx, t); err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}
