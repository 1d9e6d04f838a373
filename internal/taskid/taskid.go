// Package taskid generates task identifiers of the form
// {DD-Mon-YYYY}-{seq}. The generators are pure: they read the
// snapshot passed in and never touch the store, so callers must
// hand them a fresh snapshot and serialise creation themselves.
package taskid

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/pkg/lgdate"
	"github.com/google/uuid"
)

// Scheme names a generator.
type Scheme string

const (
	SchemeSequential Scheme = "sequential"
	SchemeUUID       Scheme = "uuid"
)

// Generator produces the next identifier given the current records.
type Generator interface {
	Next(records models.TaskRecords) string
	Scheme() Scheme
}

// New returns the generator for scheme.
func New(scheme string, clock lgdate.Clock, loc *time.Location) (Generator, error) {
	switch Scheme(scheme) {
	case SchemeSequential, "":
		return &Sequential{Clock: clock, Location: loc}, nil
	case SchemeUUID:
		return &UUID{Clock: clock, Location: loc}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q", scheme)
}

// Sequential numbers tasks per day. The sequence is one past the
// number of ids already carrying the day's prefix, or past the
// highest suffix seen when rows have been deleted in between.
type Sequential struct {
	Clock    lgdate.Clock
	Location *time.Location
}

func (g *Sequential) Scheme() Scheme { return SchemeSequential }

func (g *Sequential) Next(records models.TaskRecords) string {
	date := lgdate.Today(g.Clock, g.Location)
	prefix := date + "-"

	var count, highest int
	for _, r := range records {
		if !strings.HasPrefix(r.TaskID, date) {
			continue
		}
		count++
		if n, err := strconv.Atoi(strings.TrimPrefix(r.TaskID, prefix)); err == nil && n > highest {
			highest = n
		}
	}

	return Format(date, max(count, highest)+1)
}

// Format renders an identifier from a date and a sequence number.
func Format(date string, seq int) string {
	return fmt.Sprintf("%s-%03d", date, seq)
}

// UUID prefixes the day with eight hex digits of a random uuid. It
// is collision-proof across processes at the cost of ordering.
type UUID struct {
	Clock    lgdate.Clock
	Location *time.Location
}

func (g *UUID) Scheme() Scheme { return SchemeUUID }

func (g *UUID) Next(models.TaskRecords) string {
	date := lgdate.Today(g.Clock, g.Location)
	return date + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Serial runs creations one at a time within a process.
type Serial struct {
	mu sync.Mutex
}

// Do calls fn while holding the creation lock.
func (s *Serial) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
