package cli

import (
	"github.com/spf13/cobra"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		p := &models.Project{Name: args[0], Status: srv.Workflow.GetInitialStatus(models.EntityTypeProject)}
		if err := srv.Projects.Create(cmd.Context(), p); err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(p)
		}
		Success(FormatEntityCreationMessage("project", p.Key, p.Name))
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		projects, err := srv.Projects.List(cmd.Context())
		if err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(projects)
		}
		headers, rows := ProjectRows(projects)
		OutputTable(headers, rows)
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectCreateCmd, projectListCmd)
	RootCmd.AddCommand(projectCmd)
}
