package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/caesium-cloud/lgflow/internal/metrics"
	"github.com/caesium-cloud/lgflow/internal/metrics/testutil"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/internal/tablestore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table() *tablestore.Table {
	return &tablestore.Table{
		Columns: []string{"task_id", "lg_number"},
		Rows:    [][]string{{"1", "LG1"}, {"2", "LG2"}},
	}
}

func TestNewRejectsBadSchedules(t *testing.T) {
	_, err := New("", nil, nil, nil)
	assert.Error(t, err)

	_, err = New("every day", nil, nil, nil)
	assert.Error(t, err)

	_, err = New("0 0 0 * * *", nil, nil, nil)
	assert.Error(t, err, "seconds field is not accepted")
}

func TestFireCopiesTable(t *testing.T) {
	src, dst := memory.New(table()), memory.New(nil)
	b, err := New("0 2 * * *", time.UTC, src, dst)
	require.NoError(t, err)

	before := testutil.CounterValue(t, metrics.BackupsTotal, "succeeded")
	require.NoError(t, b.Fire(context.Background()))
	assert.Equal(t, before+1, testutil.CounterValue(t, metrics.BackupsTotal, "succeeded"))

	got, err := dst.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, table().Rows, got.Rows)
}

func TestFireReportsFailure(t *testing.T) {
	src, dst := memory.New(table()), memory.New(nil)
	src.FailLoads(errors.New("offline"))

	b, err := New("0 2 * * *", nil, src, dst)
	require.NoError(t, err)

	before := testutil.CounterValue(t, metrics.BackupsTotal, "failed")
	assert.Error(t, b.Fire(context.Background()))
	assert.Equal(t, before+1, testutil.CounterValue(t, metrics.BackupsTotal, "failed"))
}

func TestNextTickHonoursLocation(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)
	b, err := New("0 2 * * *", cairo, memory.New(nil), memory.New(nil))
	require.NoError(t, err)
	b.now = func() time.Time { return time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) }

	next := b.nextTick()
	assert.Equal(t, time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), next.UTC())
}

func TestListenStopsWithContext(t *testing.T) {
	b, err := New("0 2 * * *", nil, memory.New(nil), memory.New(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Listen(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listen did not return")
	}
}
