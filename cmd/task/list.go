package task

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/spf13/cobra"
)

var (
	listQueue    string
	listLGNumber string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List a work queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		records, err := svc.List(&task.ListRequest{
			Actor:    identity.Actor(),
			Queue:    role.Queue(listQueue),
			LGNumber: listLGNumber,
		})
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, records, renderTasks(records))
	},
}

func init() {
	listCmd.Flags().StringVarP(&listQueue, "queue", "q", string(role.QueueMaster), "Queue to list (tasks, watchlist, originals, active, review, pendings, master)")
	listCmd.Flags().StringVar(&listLGNumber, "lg-number", "", "Only tasks for this guarantee")
}
