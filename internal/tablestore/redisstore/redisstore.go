// Package redisstore keeps the task table in Redis: a list of JSON
// encoded rows, a JSON header and a revision counter under a common
// key prefix. Replaces run in MULTI/EXEC, conditional replaces WATCH
// the revision key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/go-redis/redis/v8"
)

type Store struct {
	client *redis.Client
	key    string
}

// New returns a store keeping its data under key.
func New(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr, key string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, lgerr.Unavailable("dial", err)
	}
	return New(client, key), nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) rowsKey() string     { return s.key + ":rows" }
func (s *Store) columnsKey() string  { return s.key + ":columns" }
func (s *Store) revisionKey() string { return s.key + ":revision" }

func (s *Store) LoadAll(ctx context.Context) (*tablestore.Table, error) {
	var (
		rev     *redis.StringCmd
		columns *redis.StringCmd
		rows    *redis.StringSliceCmd
	)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rev = pipe.Get(ctx, s.revisionKey())
		columns = pipe.Get(ctx, s.columnsKey())
		rows = pipe.LRange(ctx, s.rowsKey(), 0, -1)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, lgerr.Unavailable("load", err)
	}

	t := &tablestore.Table{}

	if n, err := rev.Int64(); err == nil {
		t.Revision = n
	} else if !errors.Is(err, redis.Nil) {
		return nil, lgerr.Unavailable("load", err)
	}

	if raw, err := columns.Bytes(); err == nil {
		if err := json.Unmarshal(raw, &t.Columns); err != nil {
			return nil, lgerr.Unavailable("load", err)
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, lgerr.Unavailable("load", err)
	}

	values, err := rows.Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, lgerr.Unavailable("load", err)
	}

	t.Rows = make([][]string, 0, len(values))
	for _, v := range values {
		var row []string
		if err := json.Unmarshal([]byte(v), &row); err != nil {
			return nil, lgerr.Unavailable("load", err)
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func (s *Store) ReplaceAll(ctx context.Context, t *tablestore.Table) error {
	columns, rows, err := encode(t)
	if err != nil {
		return lgerr.Unavailable("replace", err)
	}

	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.write(ctx, pipe, columns, rows)
		return nil
	}); err != nil {
		return lgerr.Unavailable("replace", err)
	}

	return nil
}

func (s *Store) ReplaceIf(ctx context.Context, t *tablestore.Table, revision int64) error {
	columns, rows, err := encode(t)
	if err != nil {
		return lgerr.Unavailable("replace", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, s.revisionKey()).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != revision {
			return tablestore.ErrRevisionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.write(ctx, pipe, columns, rows)
			return nil
		})
		return err
	}, s.revisionKey())

	switch {
	case err == nil:
		return nil
	case errors.Is(err, tablestore.ErrRevisionMismatch), errors.Is(err, redis.TxFailedErr):
		return tablestore.ErrRevisionMismatch
	default:
		return lgerr.Unavailable("replace", err)
	}
}

func (s *Store) write(ctx context.Context, pipe redis.Pipeliner, columns []byte, rows []interface{}) {
	pipe.Del(ctx, s.rowsKey())
	if len(rows) > 0 {
		pipe.RPush(ctx, s.rowsKey(), rows...)
	}
	pipe.Set(ctx, s.columnsKey(), columns, 0)
	pipe.Incr(ctx, s.revisionKey())
}

func encode(t *tablestore.Table) ([]byte, []interface{}, error) {
	columns, err := json.Marshal(t.Columns)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]interface{}, 0, len(t.Rows))
	for _, row := range t.Rows {
		buf, err := json.Marshal(row)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, string(buf))
	}

	return columns, rows, nil
}
