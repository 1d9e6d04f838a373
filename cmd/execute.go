package cmd

import (
	"github.com/caesium-cloud/lgflow/cmd/start"
	"github.com/caesium-cloud/lgflow/cmd/table"
	"github.com/caesium-cloud/lgflow/cmd/task"
	"github.com/caesium-cloud/lgflow/cmd/user"
	"github.com/spf13/cobra"
)

var cmds = []*cobra.Command{
	start.Cmd,
	task.Cmd,
	user.Cmd,
	table.Cmd,
}

// Execute builds the command tree and executes commands.
func Execute() error {
	command := &cobra.Command{
		Use:          "lgflow",
		Short:        "Letter of guarantee task workflow",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	for _, c := range cmds {
		command.AddCommand(c)
	}

	return command.Execute()
}
