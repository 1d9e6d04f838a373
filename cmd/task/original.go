package task

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/spf13/cobra"
)

var receiveDate string

var receiveCmd = &cobra.Command{
	Use:   "receive-original <task-id>",
	Short: "Record receipt of the original for a copy task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := svc.ReceiveOriginal(&task.ReceiveRequest{
			TaskID: args[0],
			Actor:  identity.Actor(),
			Date:   receiveDate,
		})
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, rec, renderTask(rec))
	},
}

func init() {
	receiveCmd.Flags().StringVar(&receiveDate, "date", "", "Receipt date (default today)")
}
