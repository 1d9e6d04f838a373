package task

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	transitionDecision   string
	transitionAuthorizer string
	transitionReason     string
	transitionFileSent   bool
	transitionUpdates    map[string]string
)

var transitionCmd = &cobra.Command{
	Use:     "transition <task-id>",
	Aliases: []string{"move"},
	Short:   "Apply a workflow decision to a task",
	Example: "lgflow task transition 01-Mar-2026-001 --user alice --role Inputter --decision send --authorizer bob",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decision, err := workflow.ParseDecision(transitionDecision)
		if err != nil {
			return err
		}

		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := svc.Transition(&task.TransitionRequest{
			Request: workflow.Request{
				Decision:          decision,
				Authorizer:        transitionAuthorizer,
				Reason:            transitionReason,
				FileSentConfirmed: transitionFileSent,
				Updates:           transitionUpdates,
			},
			TaskID: args[0],
			Actor:  identity.Actor(),
		})
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, rec, renderTask(rec))
	},
}

func init() {
	f := transitionCmd.Flags()
	f.StringVarP(&transitionDecision, "decision", "d", "", "send, mark-pending, approve, hold, return, release-to-inputter, release-to-authorizer or resubmit")
	f.StringVar(&transitionAuthorizer, "authorizer", "", "Authorizer to send the task to")
	f.StringVar(&transitionReason, "reason", "", "Pending or return reason")
	f.BoolVar(&transitionFileSent, "file-sent", false, "Confirm the file was sent (required to approve)")
	f.StringToStringVar(&transitionUpdates, "set", nil, "Field updates as column=value")
}
