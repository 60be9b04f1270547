package cli

import (
	"github.com/spf13/cobra"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Manage features",
}

var featureProjectID string

var featureCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a feature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		f := &models.Feature{Name: args[0], Status: srv.Workflow.GetInitialStatus(models.EntityTypeFeature)}
		if featureProjectID != "" {
			f.ProjectID = &featureProjectID
		}
		if err := srv.Features.Create(cmd.Context(), f); err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(f)
		}
		Success(FormatEntityCreationMessage("feature", f.Key, f.Name))
		return nil
	},
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List features",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, closeFn, err := OpenServer()
		if err != nil {
			return err
		}
		defer closeFn()

		var features []*models.Feature
		if featureProjectID != "" {
			features, err = srv.Features.ListByProject(cmd.Context(), featureProjectID)
		} else {
			features, err = srv.Features.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		if GlobalConfig.JSON {
			return OutputJSON(features)
		}
		headers, rows := FeatureRows(features)
		OutputTable(headers, rows)
		return nil
	},
}

func init() {
	featureCreateCmd.Flags().StringVar(&featureProjectID, "project", "", "parent project ID")
	featureListCmd.Flags().StringVar(&featureProjectID, "project", "", "filter by parent project ID")
	featureCmd.AddCommand(featureCreateCmd, featureListCmd)
	RootCmd.AddCommand(featureCmd)
}
