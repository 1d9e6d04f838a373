package tablestore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	src := &Table{
		Columns:  []string{"task_id", "status"},
		Rows:     [][]string{{"a", "Active"}},
		Revision: 3,
	}

	dst := src.Clone()
	dst.Rows[0][1] = "Completed"
	dst.Columns[0] = "id"

	require.Equal(t, "Active", src.Rows[0][1])
	require.Equal(t, "task_id", src.Columns[0])
	require.Equal(t, int64(3), dst.Revision)
	require.Nil(t, (*Table)(nil).Clone())
}

func TestIndexKeepsFirstDuplicate(t *testing.T) {
	tbl := &Table{Columns: []string{"a", "b", "a"}}
	require.Equal(t, map[string]int{"a": 0, "b": 1}, tbl.Index())
}

func TestEmpty(t *testing.T) {
	require.True(t, (*Table)(nil).Empty())
	require.True(t, (&Table{Columns: []string{"a"}}).Empty())
	require.False(t, (&Table{Rows: [][]string{{"x"}}}).Empty())
}
