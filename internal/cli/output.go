package cli

import (
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/recommendation"
)

// FormatEntityCreationMessage formats a human-readable creation message
// for a newly-created Project, Feature, or Task.
func FormatEntityCreationMessage(entityType, key, name string) string {
	return fmt.Sprintf("created %s %s: %s", entityType, key, name)
}

// ProjectRows converts projects into table rows for OutputTable.
func ProjectRows(projects []*models.Project) (headers []string, rows [][]string) {
	headers = []string{"Key", "Name", "Status"}
	for _, p := range projects {
		rows = append(rows, []string{p.Key, p.Name, p.Status})
	}
	return headers, rows
}

// FeatureRows converts features into table rows for OutputTable.
func FeatureRows(features []*models.Feature) (headers []string, rows [][]string) {
	headers = []string{"Key", "Name", "Status", "Priority"}
	for _, f := range features {
		rows = append(rows, []string{f.Key, f.Name, f.Status, string(f.Priority)})
	}
	return headers, rows
}

// TaskRows converts tasks into table rows for OutputTable.
func TaskRows(tasks []*models.Task) (headers []string, rows [][]string) {
	headers = []string{"ID", "Title", "Status", "Priority"}
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Title, t.Status, string(t.Priority)})
	}
	return headers, rows
}

// RecommendationRows converts recommendation briefs into table rows for
// OutputTable.
func RecommendationRows(tasks []recommendation.TaskBrief) (headers []string, rows [][]string) {
	headers = []string{"ID", "Title", "Status", "Priority", "Complexity"}
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Title, t.Status, string(t.Priority), fmt.Sprintf("%d", t.Complexity)})
	}
	return headers, rows
}
