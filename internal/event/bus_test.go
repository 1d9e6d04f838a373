package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestBusFilters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New()
	all, err := b.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	lg, err := b.Subscribe(ctx, Filter{LGNumber: "LG100", Types: []Type{TypeTaskTransitioned}})
	require.NoError(t, err)

	b.Publish(Event{Type: TypeTaskCreated, TaskID: "1", LGNumber: "LG100"})
	b.Publish(Event{Type: TypeTaskTransitioned, TaskID: "2", LGNumber: "LG200"})
	b.Publish(Event{Type: TypeTaskTransitioned, TaskID: "1", LGNumber: "LG100", Payload: Payload(map[string]string{"to": "Ready for Auth"})})

	assert.Equal(t, TypeTaskCreated, receive(t, all).Type)
	assert.Equal(t, "2", receive(t, all).TaskID)
	assert.Equal(t, "1", receive(t, all).TaskID)

	e := receive(t, lg)
	assert.Equal(t, "1", e.TaskID)
	assert.False(t, e.Timestamp.IsZero())
	assert.JSONEq(t, `{"to":"Ready for Auth"}`, string(e.Payload))
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, b := range []Bus{New(), Nop()} {
		ch, err := b.Subscribe(ctx, Filter{TaskID: "x"})
		require.NoError(t, err)
		b.Publish(Event{Type: TypeTaskDeleted, TaskID: "y"})

		cancel()
		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("subscription was not closed")
		}
	}
}
