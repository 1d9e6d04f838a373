// Package cli holds what the lgflow subcommands share: identity flags,
// wiring of the services and output rendering.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/api/rest/service/user"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/runtime"
	"github.com/caesium-cloud/lgflow/pkg/env"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Identity is the actor a command runs as.
type Identity struct {
	User string
	Role string
}

// Bind registers the --user and --role flags on cmd.
func (id *Identity) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&id.User, "user", "", "Username to act as")
	cmd.PersistentFlags().StringVar(&id.Role, "role", "", "Role to act as (Inputter, Authorizer, Admin)")
}

// Actor returns the identity as a workflow actor.
func (id *Identity) Actor() role.Actor {
	r, _ := models.ParseRole(id.Role)
	return role.Actor{User: strings.TrimSpace(id.User), Role: r}
}

// Open wires the services against the configured stores. The returned
// function releases them.
func Open(cmd *cobra.Command) (func(), error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := runtime.Build(ctx, env.Variables())
	if err != nil {
		return nil, err
	}

	task.Configure(&task.Backend{
		Repo:      rt.Repo,
		Engine:    rt.Engine,
		Directory: rt.Directory,
	})
	user.Configure(rt.Directory)

	return func() {
		if err := rt.Close(); err != nil {
			cmd.PrintErrf("close: %v\n", err)
		}
	}, nil
}

// Print writes a formatted line to the command's output.
func Print(cmd *cobra.Command, format string, args ...any) error {
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), format, args...); err != nil {
		cmd.PrintErrf("write output: %v\n", err)
		return err
	}
	return nil
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)
	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Table renders rows under headers.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// Output renders v as JSON or, when format is table, through render.
func Output(cmd *cobra.Command, format string, v any, render func() string) error {
	switch format {
	case OutputJSON:
		return JSON(cmd.OutOrStdout(), v)
	case OutputTable, "":
		return Print(cmd, "%s\n", render())
	}
	return fmt.Errorf("unknown output format %q", format)
}
