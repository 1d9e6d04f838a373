package task

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/spf13/cobra"
)

var editUpdates map[string]string

var editCmd = &cobra.Command{
	Use:     "edit <task-id>",
	Short:   "Edit an active task's annotations",
	Example: "lgflow task edit 01-Mar-2026-001 --user bob --role Authorizer --set inputter=carol --set file_sent=1",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := svc.EditActive(&task.EditRequest{
			TaskID:  args[0],
			Actor:   identity.Actor(),
			Updates: editUpdates,
		})
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, rec, renderTask(rec))
	},
}

func init() {
	editCmd.Flags().StringToStringVar(&editUpdates, "set", nil, "Field updates as column=value")
}
