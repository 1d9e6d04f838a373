package task

import (
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Permanently remove a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := svc.Delete(args[0], identity.Actor()); err != nil {
			return err
		}
		return cli.Print(cmd, "Deleted %s\n", args[0])
	},
}
