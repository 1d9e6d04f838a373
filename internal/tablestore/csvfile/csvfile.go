// Package csvfile keeps the task table in a single CSV file: a header
// row followed by one row per record. Replaces are written to a
// temporary file and renamed over the original.
package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
)

type Store struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) LoadAll(ctx context.Context) (*tablestore.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, lgerr.Unavailable("load", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.read()
	if err != nil {
		return nil, lgerr.Unavailable("load", err)
	}
	return t, nil
}

func (s *Store) ReplaceAll(ctx context.Context, t *tablestore.Table) error {
	return s.replace(ctx, t, nil)
}

// ReplaceIf compares a content hash of the file with revision. The
// check is only exclusive between writers sharing this Store.
func (s *Store) ReplaceIf(ctx context.Context, t *tablestore.Table, revision int64) error {
	return s.replace(ctx, t, &revision)
}

func (s *Store) replace(ctx context.Context, t *tablestore.Table, expected *int64) error {
	if err := ctx.Err(); err != nil {
		return lgerr.Unavailable("replace", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if expected != nil {
		current, err := s.read()
		if err != nil {
			return lgerr.Unavailable("replace", err)
		}
		if current.Revision != *expected {
			return tablestore.ErrRevisionMismatch
		}
	}

	if err := s.write(t); err != nil {
		return lgerr.Unavailable("replace", err)
	}
	return nil
}

func (s *Store) read() (*tablestore.Table, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &tablestore.Table{}, nil
	}
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	t := &tablestore.Table{Revision: revision(data)}
	if len(records) == 0 {
		return t, nil
	}

	t.Columns = records[0]
	t.Rows = records[1:]
	if t.Rows == nil {
		t.Rows = [][]string{}
	}

	return t, nil
}

func (s *Store) write(t *tablestore.Table) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(t.Columns) > 0 || len(t.Rows) > 0 {
		if err := w.Write(t.Columns); err != nil {
			return err
		}
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

func revision(data []byte) int64 {
	h := fnv.New64a()
	h.Write(data)
	return int64(h.Sum64() >> 1)
}
