// Package snapshot wraps a table store with the load -> mutate -> save
// cycle used by every request. A Snapshot is owned by the single cycle
// that loaded it and is never shared.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/metrics"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/pkg/log"
)

// Mode selects how concurrent cycles are reconciled on save.
type Mode string

const (
	// ModeOptimistic rejects a save with lgerr.ErrConflict when a record
	// touched by the cycle changed in the store since it was read.
	ModeOptimistic Mode = "optimistic"
	// ModeOverwrite replaces the whole table with the cycle's snapshot;
	// the last writer wins.
	ModeOverwrite Mode = "overwrite"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOptimistic, ModeOverwrite:
		return Mode(s), nil
	case "":
		return ModeOptimistic, nil
	}
	return "", fmt.Errorf("unknown concurrency mode %q", s)
}

type Options struct {
	Mode Mode
	// DegradeOnLoadError turns a failed load into an empty snapshot
	// instead of an error.
	DegradeOnLoadError bool
}

type Repository struct {
	store tablestore.Store
	opts  Options
}

func New(store tablestore.Store, opts Options) *Repository {
	if opts.Mode == "" {
		opts.Mode = ModeOptimistic
	}
	return &Repository{store: store, opts: opts}
}

func (r *Repository) Mode() Mode {
	return r.opts.Mode
}

// Snapshot is an in-memory copy of the whole task table.
type Snapshot struct {
	Records  models.TaskRecords
	Revision int64
	// Degraded is set when the load failed and the snapshot is an
	// empty stand-in; LoadErr holds the cause.
	Degraded bool
	LoadErr  error
	Coerced  []Coercion

	read    map[string]int64
	touched map[string]bool
	created map[string]bool
	deleted map[string]bool
}

func newSnapshot(records models.TaskRecords, revision int64) *Snapshot {
	s := &Snapshot{
		Records:  records,
		Revision: revision,
		read:     make(map[string]int64, len(records)),
		touched:  map[string]bool{},
		created:  map[string]bool{},
		deleted:  map[string]bool{},
	}
	for _, rec := range records {
		s.read[rec.TaskID] = rec.Version
	}
	return s
}

// FromRecords builds a snapshot over records as if they were just read.
func FromRecords(records models.TaskRecords) *Snapshot {
	return newSnapshot(records, 0)
}

// Find returns the record with id.
func (s *Snapshot) Find(id string) (*models.TaskRecord, error) {
	rec, _ := s.Records.Find(id)
	if rec == nil {
		return nil, lgerr.NotFoundf("task %q", id)
	}
	return rec, nil
}

// Add appends a newly created record.
func (s *Snapshot) Add(rec *models.TaskRecord) {
	s.Records = append(s.Records, rec)
	s.created[rec.TaskID] = true
}

// Put replaces the record sharing rec's task_id.
func (s *Snapshot) Put(rec *models.TaskRecord) error {
	_, i := s.Records.Find(rec.TaskID)
	if i < 0 {
		return lgerr.NotFoundf("task %q", rec.TaskID)
	}
	s.Records[i] = rec
	if !s.created[rec.TaskID] {
		s.touched[rec.TaskID] = true
	}
	return nil
}

// Remove deletes the record with id from the snapshot.
func (s *Snapshot) Remove(id string) error {
	_, i := s.Records.Find(id)
	if i < 0 {
		return lgerr.NotFoundf("task %q", id)
	}
	s.Records = append(s.Records[:i:i], s.Records[i+1:]...)
	if s.created[id] {
		delete(s.created, id)
		return nil
	}
	delete(s.touched, id)
	s.deleted[id] = true
	return nil
}

// Dirty reports whether the snapshot holds unsaved changes.
func (s *Snapshot) Dirty() bool {
	return len(s.touched)+len(s.created)+len(s.deleted) > 0
}

// Load reads the whole table.
func (r *Repository) Load(ctx context.Context) (*Snapshot, error) {
	t, err := r.loadTable(ctx)
	if err != nil {
		if !r.opts.DegradeOnLoadError {
			return nil, err
		}
		log.Error("table load failed, continuing with an empty working set", "error", err)
		snap := newSnapshot(models.TaskRecords{}, 0)
		snap.Degraded = true
		snap.LoadErr = err
		return snap, nil
	}

	records, coerced := Decode(t)
	for _, c := range coerced {
		log.Warn("numeric cell coerced to zero", "task_id", c.TaskID, "column", c.Column, "value", c.Value)
		metrics.CoercedCellsTotal.WithLabelValues(c.Column).Inc()
	}
	metrics.TableRows.Set(float64(len(records)))

	snap := newSnapshot(records, t.Revision)
	snap.Coerced = coerced
	return snap, nil
}

// Save writes the snapshot back to the store according to the
// repository's mode. On success the snapshot reflects what was stored.
func (r *Repository) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Degraded {
		log.Warn("saving a snapshot whose load failed", "mode", r.opts.Mode, "cause", snap.LoadErr)
	}

	switch r.opts.Mode {
	case ModeOverwrite:
		return r.overwrite(ctx, snap)
	default:
		return r.merge(ctx, snap)
	}
}

func (r *Repository) overwrite(ctx context.Context, snap *Snapshot) error {
	records := make(models.TaskRecords, len(snap.Records))
	for i, rec := range snap.Records {
		rec = rec.Clone()
		if snap.touched[rec.TaskID] || snap.created[rec.TaskID] {
			rec.Version++
		}
		records[i] = rec
	}

	if err := r.replaceTable(ctx, Encode(records), nil); err != nil {
		return err
	}

	snap.commit(records, snap.Revision+1)
	return nil
}

func (r *Repository) merge(ctx context.Context, snap *Snapshot) error {
	t, err := r.loadTable(ctx)
	if err != nil {
		return err
	}
	fresh, _ := Decode(t)

	for id := range snap.touched {
		if err := snap.check(fresh, id); err != nil {
			return err
		}
	}
	for id := range snap.deleted {
		if err := snap.check(fresh, id); err != nil {
			return err
		}
	}
	for id := range snap.created {
		if rec, _ := fresh.Find(id); rec != nil {
			metrics.SaveConflictsTotal.WithLabelValues("duplicate_id").Inc()
			return lgerr.Conflictf("task id %s was created by another writer", id)
		}
	}

	merged := make(models.TaskRecords, 0, len(fresh)+len(snap.created))
	for _, rec := range fresh {
		switch {
		case snap.deleted[rec.TaskID]:
			continue
		case snap.touched[rec.TaskID]:
			mine, _ := snap.Records.Find(rec.TaskID)
			mine = mine.Clone()
			mine.Version = rec.Version + 1
			merged = append(merged, mine)
		default:
			merged = append(merged, rec)
		}
	}
	for _, rec := range snap.Records {
		if snap.created[rec.TaskID] {
			rec = rec.Clone()
			rec.Version = 1
			merged = append(merged, rec)
		}
	}

	revision := t.Revision
	if err := r.replaceTable(ctx, Encode(merged), &revision); err != nil {
		if errors.Is(err, tablestore.ErrRevisionMismatch) {
			metrics.SaveConflictsTotal.WithLabelValues("revision").Inc()
			return lgerr.Conflictf("table changed while saving, reload and retry")
		}
		return err
	}

	snap.commit(merged, t.Revision+1)
	return nil
}

func (s *Snapshot) check(fresh models.TaskRecords, id string) error {
	rec, _ := fresh.Find(id)
	if rec == nil {
		metrics.SaveConflictsTotal.WithLabelValues("deleted").Inc()
		return lgerr.Conflictf("task %s was deleted by another writer", id)
	}
	if rec.Version != s.read[id] {
		metrics.SaveConflictsTotal.WithLabelValues("version").Inc()
		return lgerr.Conflictf("task %s was changed by another writer (version %d, read %d)", id, rec.Version, s.read[id])
	}
	return nil
}

func (s *Snapshot) commit(records models.TaskRecords, revision int64) {
	fresh := newSnapshot(records, revision)
	fresh.Coerced = s.Coerced
	*s = *fresh
}

func (r *Repository) loadTable(ctx context.Context) (*tablestore.Table, error) {
	start := time.Now()
	t, err := r.store.LoadAll(ctx)
	metrics.StoreOperationDurationSeconds.WithLabelValues("load").Observe(time.Since(start).Seconds())
	metrics.StoreOperationsTotal.WithLabelValues("load", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, asUnavailable("load", err)
	}
	return t, nil
}

func (r *Repository) replaceTable(ctx context.Context, t *tablestore.Table, revision *int64) error {
	start := time.Now()

	var err error
	if cond, ok := r.store.(tablestore.Conditional); ok && revision != nil {
		err = cond.ReplaceIf(ctx, t, *revision)
	} else {
		err = r.store.ReplaceAll(ctx, t)
	}

	metrics.StoreOperationDurationSeconds.WithLabelValues("replace").Observe(time.Since(start).Seconds())
	metrics.StoreOperationsTotal.WithLabelValues("replace", metrics.Outcome(err)).Inc()

	if err != nil && !errors.Is(err, tablestore.ErrRevisionMismatch) {
		return asUnavailable("replace", err)
	}
	return err
}

func asUnavailable(op string, err error) error {
	if errors.Is(err, lgerr.ErrStoreUnavailable) {
		return err
	}
	return lgerr.Unavailable(op, err)
}
