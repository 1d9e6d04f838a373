package task

import (
	"strconv"

	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <lg-number>",
	Short: "Show the running total of a guarantee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		resp, err := svc.History(args[0])
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, resp, func() string {
			rows := make([][]string, 0, len(resp.Ledger))
			for _, step := range resp.Ledger {
				rows = append(rows, []string{
					step.TaskID,
					step.ReqType,
					formatAmount(step.Amount),
					formatAmount(step.Total),
					formatAmount(step.Expected),
					strconv.FormatBool(step.Consistent()),
				})
			}
			out := cli.Table([]string{"TASK", "TYPE", "AMOUNT", "TOTAL", "EXPECTED", "CONSISTENT"}, rows)
			out += "\nprevious total " + formatAmount(resp.PrevTotal)
			if resp.Coerced {
				out += " (from a malformed cell)"
			}
			return out
		})
	},
}
