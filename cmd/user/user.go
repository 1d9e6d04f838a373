package user

import (
	"context"
	"os"

	"github.com/caesium-cloud/lgflow/api/rest/service/user"
	"github.com/caesium-cloud/lgflow/cmd/cli"
	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/spf13/cobra"
)

var (
	identity cli.Identity
	output   string

	listRole string

	addName string
	addRole string
)

// Cmd is the parent command for user directory operations.
var Cmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"u"},
	Short:   "Manage the user directory",
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users, optionally by role",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		users, err := svc.List(&user.ListRequest{Role: listRole})
		if err != nil {
			return err
		}
		return cli.Output(cmd, output, users, renderUsers(users))
	},
}

var addCmd = &cobra.Command{
	Use:     "add <username>",
	Short:   "Add a user to the directory",
	Example: "lgflow user add ines --name Ines --role Inputter --user root --role-as Admin",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		usr, err := svc.Create(&user.CreateRequest{
			Username: args[0],
			Name:     addName,
			Role:     addRole,
			Actor:    identity.Actor(),
		})
		if err != nil {
			return err
		}
		return cli.Output(cmd, output, usr, renderUsers(models.Users{usr}))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <users.yaml>",
	Short: "Add every user listed in a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		buf, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		users, err := directory.Decode(buf)
		if err != nil {
			return err
		}

		svc, closeFn, err := service(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		for _, u := range users {
			if _, err := svc.Create(&user.CreateRequest{
				Username: u.Username,
				Name:     u.Name,
				Role:     string(u.Role),
				Actor:    identity.Actor(),
			}); err != nil {
				return err
			}
		}
		return cli.Print(cmd, "Imported %d user(s)\n", len(users))
	},
}

func init() {
	Cmd.PersistentFlags().StringVar(&identity.User, "user", "", "Username to act as")
	Cmd.PersistentFlags().StringVar(&identity.Role, "role-as", "", "Role to act as")
	Cmd.PersistentFlags().StringVarP(&output, "output", "o", cli.OutputTable, "Output format (table, json)")

	listCmd.Flags().StringVar(&listRole, "role", "", "Only users holding this role")
	addCmd.Flags().StringVar(&addName, "name", "", "Display name")
	addCmd.Flags().StringVar(&addRole, "role", "", "Inputter, Authorizer or Admin")

	Cmd.AddCommand(listCmd, addCmd, importCmd)
}

func service(cmd *cobra.Command) (user.User, func(), error) {
	closeFn, err := cli.Open(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return user.Service(ctx), closeFn, nil
}

func renderUsers(users models.Users) func() string {
	return func() string {
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.Username, u.Name, string(u.Role)})
		}
		return cli.Table([]string{"USERNAME", "NAME", "ROLE"}, rows)
	}
}
