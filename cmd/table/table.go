package table

import (
	"context"

	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/runtime"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/internal/tablestore/csvfile"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/spf13/cobra"
)

// Cmd is the parent command for moving the task table between stores.
var Cmd = &cobra.Command{
	Use:   "table",
	Short: "Export or import the task table as CSV",
}

var exportCmd = &cobra.Command{
	Use:     "export <file.csv>",
	Short:   "Write the configured table store to a CSV file",
	Example: "LGFLOW_STORE=redis lgflow table export tasks.csv",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return copyTable(cmd, func(store tablestore.Store) (tablestore.Store, tablestore.Store) {
			return csvfile.New(args[0]), store
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Replace the configured table store with a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return copyTable(cmd, func(store tablestore.Store) (tablestore.Store, tablestore.Store) {
			return store, csvfile.New(args[0])
		})
	},
}

func init() {
	Cmd.AddCommand(exportCmd, importCmd)
}

// copyTable opens the configured store and copies between it and the
// CSV file in the direction pick chooses (dst, src).
func copyTable(cmd *cobra.Command, pick func(tablestore.Store) (tablestore.Store, tablestore.Store)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := runtime.Build(ctx, env.Variables())
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.Error("runtime close failure", "error", err)
		}
	}()

	dst, src := pick(rt.Store)
	n, err := tablestore.Copy(ctx, dst, src)
	if err != nil {
		return err
	}

	log.Info("table copied", "rows", n, "store", env.Variables().Store)
	return cli.Print(cmd, "Copied %d row(s)\n", n)
}
