package task

import (
	"strconv"

	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the workload tiles for the acting user",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		d, err := svc.Dashboard(identity.Actor())
		if err != nil {
			return err
		}

		return cli.Output(cmd, output, d, func() string {
			return cli.Table(
				[]string{"TODAY", "GLOBAL PENDING", "YOUR ACTIONS", "TOTAL"},
				[][]string{{
					strconv.Itoa(d.Today),
					strconv.Itoa(d.GlobalPending),
					strconv.Itoa(d.YourActions),
					strconv.Itoa(d.Total),
				}},
			)
		})
	},
}
