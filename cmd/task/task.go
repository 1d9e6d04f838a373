package task

import (
	"context"
	"fmt"

	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/spf13/cobra"
)

var (
	identity cli.Identity
	output   string
)

// Cmd is the parent command for task operations.
var Cmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"t"},
	Short:   "Create and move tasks through the workflow",
}

func init() {
	identity.Bind(Cmd)
	Cmd.PersistentFlags().StringVarP(&output, "output", "o", cli.OutputTable, "Output format (table, json)")

	Cmd.AddCommand(
		createCmd,
		transitionCmd,
		editCmd,
		receiveCmd,
		deleteCmd,
		listCmd,
		historyCmd,
		dashboardCmd,
	)
}

// service opens the stores and returns the task service bound to cmd's
// context.
func service(cmd *cobra.Command) (task.Task, func(), error) {
	closeFn, err := cli.Open(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return task.Service(ctx), closeFn, nil
}

var taskHeaders = []string{"TASK", "LG", "TYPE", "AMOUNT", "TOTAL", "STATUS", "INPUTTER", "AUTHORIZER"}

func taskRow(r *models.TaskRecord) []string {
	return []string{
		r.TaskID,
		r.LGNumber,
		r.ReqType,
		formatAmount(r.Amount),
		formatAmount(r.CurrentTotal),
		string(r.Status),
		r.Inputter,
		r.Authorizer,
	}
}

func renderTasks(records models.TaskRecords) func() string {
	return func() string {
		rows := make([][]string, 0, len(records))
		for _, r := range records {
			rows = append(rows, taskRow(r))
		}
		return cli.Table(taskHeaders, rows)
	}
}

func renderTask(r *models.TaskRecord) func() string {
	return renderTasks(models.TaskRecords{r})
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
