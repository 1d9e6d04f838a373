package task

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	createTask     workflow.NewTask
	createPostType string
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Assign a new task to an inputter",
	Example: "lgflow task create --user bob --role Authorizer --lg-number LG-100 --req-type Increase --amount 500 --inputter alice",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		req := &task.CreateRequest{NewTask: createTask, Actor: identity.Actor()}
		req.PostType = models.PostType(createPostType)

		resp, err := svc.Create(req)
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, resp, func() string {
			out := renderTask(resp.Task)()
			if resp.History.Found {
				out += "\nprevious total " + formatAmount(resp.History.PrevTotal) + " from " + resp.History.Last.TaskID
			}
			return out
		})
	},
}

func init() {
	f := createCmd.Flags()
	f.StringVar(&createTask.LGNumber, "lg-number", "", "Letter of guarantee number")
	f.StringVar(&createTask.ReqType, "req-type", "", "Request type, e.g. Issue, Increase, Decrease")
	f.Float64Var(&createTask.Amount, "amount", 0, "Amount of this request")
	f.StringVar(&createTask.Currency, "currency", "", "Currency code")
	f.StringVar(&createTask.Branch, "branch", "", "Branch")
	f.StringVar(&createTask.CIF, "cif", "", "Customer id")
	f.StringVar(&createTask.Applicant, "applicant", "", "Applicant")
	f.StringVar(&createTask.Beneficiary, "beneficiary", "", "Beneficiary")
	f.StringVar(&createTask.LGType, "lg-type", "", "Guarantee type")
	f.StringVar(&createPostType, "post-type", string(models.PostTypeOriginal), "Original or Copy")
	f.StringVar(&createTask.MDRef, "md-ref", "", "MD reference")
	f.StringVar(&createTask.CommChgRef, "comm-chg-ref", "", "Commission charge reference")
	f.StringVar(&createTask.Inputter, "inputter", "", "Inputter the task is assigned to")
}
