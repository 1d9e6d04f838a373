package table

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/snapshot"
	"github.com/caesium-cloud/lgflow/internal/tablestore/csvfile"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/stretchr/testify/require"
)

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LGFLOW_STORE", "csv")
	t.Setenv("LGFLOW_CSV_PATH", filepath.Join(dir, "live.csv"))
	t.Setenv("LGFLOW_DIRECTORY", "yaml")
	t.Setenv("LGFLOW_USERS_FILE", filepath.Join(dir, "users.yaml"))
	require.NoError(t, env.Process())

	ctx := context.Background()
	seed := filepath.Join(dir, "seed.csv")
	require.NoError(t, csvfile.New(seed).ReplaceAll(ctx, snapshot.Encode(models.TaskRecords{
		{TaskID: "01-Mar-2026-001", LGNumber: "LG-1", Amount: 10, CurrentTotal: 10, Status: models.StatusActive},
		{TaskID: "01-Mar-2026-002", LGNumber: "LG-2", Amount: 20, CurrentTotal: 20, Status: models.StatusPending},
	})))

	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetArgs([]string{"import", seed})
	require.NoError(t, Cmd.ExecuteContext(ctx))
	require.Contains(t, out.String(), "Copied 2 row(s)")

	exported := filepath.Join(dir, "export.csv")
	out.Reset()
	Cmd.SetArgs([]string{"export", exported})
	require.NoError(t, Cmd.ExecuteContext(ctx))
	require.Contains(t, out.String(), "Copied 2 row(s)")

	tbl, err := csvfile.New(exported).LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	require.Equal(t, models.Columns, tbl.Columns)
}
