package cli

import (
	"github.com/spf13/cobra"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/recommendation"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var (
	taskFeatureID string
	taskProjectID string
)

var taskCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		t := &models.Task{Title: args[0], Status: srv.Workflow.GetInitialStatus(models.EntityTypeTask), Priority: models.PriorityMedium}
		if taskFeatureID != "" {
			t.FeatureID = &taskFeatureID
		}
		if taskProjectID != "" {
			t.ProjectID = &taskProjectID
		}
		if err := srv.Tasks.Create(cmd.Context(), t); err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(t)
		}
		Success(FormatEntityCreationMessage("task", t.ID, t.Title))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		var tasks []*models.Task
		switch {
		case taskFeatureID != "":
			tasks, err = srv.Tasks.ListByFeature(cmd.Context(), taskFeatureID)
		case taskProjectID != "":
			tasks, err = srv.Tasks.ListByProject(cmd.Context(), taskProjectID)
		default:
			tasks, err = srv.Tasks.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(tasks)
		}
		headers, rows := TaskRows(tasks)
		OutputTable(headers, rows)
		return nil
	},
}

var (
	taskNextLimit   int
	taskNextDetails bool
)

var taskNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Recommend tasks that can start now",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		scope := recommendation.Scope{Type: recommendation.ScopeCatalog}
		switch {
		case taskProjectID != "":
			scope = recommendation.Scope{Type: recommendation.ScopeProject, ID: taskProjectID}
		case taskFeatureID != "":
			scope = recommendation.Scope{Type: recommendation.ScopeFeature, ID: taskFeatureID}
		}

		result, err := srv.Recommender.Recommend(cmd.Context(), scope, taskNextLimit, taskNextDetails)
		if err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(result)
		}
		Info("mode: %s (total candidates: %d)", result.Mode, result.TotalCandidates)
		headers, rows := RecommendationRows(result.Tasks)
		OutputTable(headers, rows)
		return nil
	},
}

func init() {
	taskCreateCmd.Flags().StringVar(&taskFeatureID, "feature", "", "parent feature ID")
	taskCreateCmd.Flags().StringVar(&taskProjectID, "project", "", "parent project ID")
	taskListCmd.Flags().StringVar(&taskFeatureID, "feature", "", "filter by parent feature ID")
	taskListCmd.Flags().StringVar(&taskProjectID, "project", "", "filter by parent project ID")
	taskNextCmd.Flags().StringVar(&taskProjectID, "project", "", "scope to a project")
	taskNextCmd.Flags().StringVar(&taskFeatureID, "feature", "", "scope to a feature")
	taskNextCmd.Flags().IntVar(&taskNextLimit, "limit", 5, "max tasks to recommend")
	taskNextCmd.Flags().BoolVar(&taskNextDetails, "details", false, "include task summaries in the result")

	taskCmd.AddCommand(taskCreateCmd, taskListCmd, taskNextCmd)
	RootCmd.AddCommand(taskCmd)
}
