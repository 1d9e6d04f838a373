// Package memory is an in-process table store used by tests and
// dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
)

type Store struct {
	mu       sync.RWMutex
	table    *tablestore.Table
	loadErr  error
	writeErr error
	loads    int
	writes   int
}

// New returns a store seeded with a copy of seed, or an empty table.
func New(seed *tablestore.Table) *Store {
	s := &Store{table: &tablestore.Table{}}
	if seed != nil {
		s.table = seed.Clone()
	}
	return s
}

func (s *Store) LoadAll(ctx context.Context) (*tablestore.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, lgerr.Unavailable("load", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loads++
	if s.loadErr != nil {
		return nil, lgerr.Unavailable("load", s.loadErr)
	}

	return s.table.Clone(), nil
}

func (s *Store) ReplaceAll(ctx context.Context, t *tablestore.Table) error {
	return s.replace(ctx, t, nil)
}

func (s *Store) ReplaceIf(ctx context.Context, t *tablestore.Table, revision int64) error {
	return s.replace(ctx, t, &revision)
}

func (s *Store) replace(ctx context.Context, t *tablestore.Table, expected *int64) error {
	if err := ctx.Err(); err != nil {
		return lgerr.Unavailable("replace", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++
	if s.writeErr != nil {
		return lgerr.Unavailable("replace", s.writeErr)
	}
	if expected != nil && *expected != s.table.Revision {
		return tablestore.ErrRevisionMismatch
	}

	next := t.Clone()
	next.Revision = s.table.Revision + 1
	s.table = next

	return nil
}

// FailLoads makes every following LoadAll fail with err; nil clears it.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailWrites makes every following replace fail with err; nil clears it.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Stats returns how many loads and writes were attempted.
func (s *Store) Stats() (loads, writes int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads, s.writes
}
