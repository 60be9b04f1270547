package config

// DefaultWorkflow returns the built-in workflow used when no config file
// is present, or as the initial snapshot before the first successful
// load.
func DefaultWorkflow() *WorkflowConfig {
	taskRoles := map[string][]string{
		"queue":    {"pending", "backlog"},
		"work":     {"in-progress"},
		"review":   {"in-review"},
		"blocked":  {"blocked"},
		"terminal": {"completed", "cancelled"},
	}
	containerRoles := map[string][]string{
		"queue":    {"draft"},
		"work":     {"active"},
		"review":   {"in-review"},
		"blocked":  {"on-hold"},
		"terminal": {"completed", "archived", "cancelled"},
	}

	return &WorkflowConfig{
		Version: DefaultWorkflowVersion,
		StatusProgression: map[string]EntityStatusProgression{
			"project": {
				Roles:            containerRoles,
				TerminalStatuses: []string{"completed", "archived", "cancelled"},
			},
			"feature": {
				Roles:            containerRoles,
				TerminalStatuses: []string{"completed", "archived", "cancelled"},
			},
			"task": {
				Roles:            taskRoles,
				TerminalStatuses: []string{"completed", "cancelled"},
			},
		},
		CompletionCleanup: CompletionCleanup{
			Enabled:    false,
			RetainTags: DefaultRetainTags,
		},
	}
}

// DefaultWorkflowVersion is the config schema version this build
// understands.
const DefaultWorkflowVersion = "2.0.0"
