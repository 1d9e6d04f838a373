package event

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

type Type string

const (
	TypeTaskCreated      Type = "task_created"
	TypeTaskTransitioned Type = "task_transitioned"
	TypeTaskUpdated      Type = "task_updated"
	TypeTaskDeleted      Type = "task_deleted"
	TypeSaveConflict     Type = "save_conflict"
)

// Event represents a change to the task table.
type Event struct {
	Type      Type            `json:"type"`
	TaskID    string          `json:"task_id,omitempty"`
	LGNumber  string          `json:"lg_number,omitempty"`
	Actor     string          `json:"actor,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Filter defines criteria for receiving events.
type Filter struct {
	TaskID   string
	LGNumber string
	Types    []Type
}

// Bus defines the event bus interface.
type Bus interface {
	Publish(e Event)
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

type bus struct {
	subscribers map[chan Event]Filter
	mu          sync.RWMutex
}

// New creates a new event bus.
func New() Bus {
	return &bus{
		subscribers: make(map[chan Event]Filter),
	}
}

func (b *bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, filter := range b.subscribers {
		if filter.matches(e) {
			select {
			case ch <- e:
			default:
				// slow subscriber, drop
			}
		}
	}
}

func (b *bus) Subscribe(ctx context.Context, filter Filter) (<-chan Event, error) {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers[ch] = filter
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (f Filter) matches(e Event) bool {
	if f.TaskID != "" && f.TaskID != e.TaskID {
		return false
	}
	if f.LGNumber != "" && f.LGNumber != e.LGNumber {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	return true
}

// Payload marshals v for use as an event payload, dropping it on error.
func Payload(v any) json.RawMessage {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return buf
}

type nop struct{}

// Nop returns a bus that discards everything.
func Nop() Bus { return nop{} }

func (nop) Publish(Event) {}

func (nop) Subscribe(ctx context.Context, _ Filter) (<-chan Event, error) {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}
