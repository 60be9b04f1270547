// Package config loads the process-wide, hot-reloadable Workflow
// Config plus the static project configuration and advisory
// agent-routing map, built on spf13/viper for real file-watch
// hot-reload.
package config

import "strings"

// EntityStatusProgression is the per-entity-type section of the
// workflow config: which statuses belong to which role, and which
// statuses are terminal.
type EntityStatusProgression struct {
	// Roles maps a role name (queue/work/review/blocked/terminal, plus
	// any custom role) to the set of status names classified under it.
	Roles map[string][]string `yaml:"roles" mapstructure:"roles"`

	// TerminalStatuses lists statuses that are terminal for this entity
	// type, used by gating and the Completion Cascade.
	TerminalStatuses []string `yaml:"terminal_statuses" mapstructure:"terminal_statuses"`
}

// CompletionCleanup controls the Completion Cascade.
type CompletionCleanup struct {
	Enabled    bool     `yaml:"enabled" mapstructure:"enabled"`
	RetainTags []string `yaml:"retain_tags" mapstructure:"retain_tags"`
}

// DefaultRetainTags is used when completion_cleanup.retain_tags is
// absent from the loaded document.
var DefaultRetainTags = []string{"bug", "bugfix", "fix", "hotfix", "critical"}

// WorkflowConfig is the process-wide, reloadable workflow definition:
// status-to-role progression per entity type, plus completion-cascade
// settings. It is held behind an atomic pointer by WorkflowLoader so
// that readers always observe a consistent snapshot.
type WorkflowConfig struct {
	Version           string                              `yaml:"version" mapstructure:"version"`
	StatusProgression map[string]EntityStatusProgression   `yaml:"status_progression" mapstructure:"status_progression"`
	CompletionCleanup CompletionCleanup                     `yaml:"completion_cleanup" mapstructure:"completion_cleanup"`
}

// statusRoleIndex is a reverse-lookup shape; GetRoleForStatus does not
// build or use it and scans Roles directly instead.
type statusRoleIndex map[string]map[string]string // entityType -> status(lower) -> role

// GetStatusesForRole returns the set of statuses classified under role
// for entityType. Returns an empty slice if entityType or role is
// unknown.
func (w *WorkflowConfig) GetStatusesForRole(entityType, role string) []string {
	if w == nil {
		return nil
	}
	prog, ok := w.StatusProgression[entityType]
	if !ok {
		return nil
	}
	statuses, ok := prog.Roles[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}

// GetRoleForStatus returns the role classifying status for entityType,
// and false if the status is unclassified. Lookup is case-insensitive.
func (w *WorkflowConfig) GetRoleForStatus(entityType, status string) (string, bool) {
	if w == nil {
		return "", false
	}
	prog, ok := w.StatusProgression[entityType]
	if !ok {
		return "", false
	}
	lowered := strings.ToLower(status)
	for role, statuses := range prog.Roles {
		for _, s := range statuses {
			if strings.ToLower(s) == lowered {
				return role, true
			}
		}
	}
	return "", false
}

// IsTerminalStatus reports whether status is listed in
// terminal_statuses for entityType.
func (w *WorkflowConfig) IsTerminalStatus(entityType, status string) bool {
	if w == nil {
		return false
	}
	prog, ok := w.StatusProgression[entityType]
	if !ok {
		return false
	}
	lowered := strings.ToLower(status)
	for _, s := range prog.TerminalStatuses {
		if strings.ToLower(s) == lowered {
			return true
		}
	}
	return false
}

// IsKnownStatus reports whether status is classified under any role for
// entityType.
func (w *WorkflowConfig) IsKnownStatus(entityType, status string) bool {
	_, ok := w.GetRoleForStatus(entityType, status)
	return ok
}

// RetainTags returns the configured cleanup retain-tag list, falling
// back to DefaultRetainTags when the document did not specify one.
func (w *WorkflowConfig) RetainTags() []string {
	if w == nil || len(w.CompletionCleanup.RetainTags) == 0 {
		return DefaultRetainTags
	}
	return w.CompletionCleanup.RetainTags
}

// CleanupEnabled reports whether the Completion Cascade should run at
// all; defaults to false (cleanup off unless explicitly enabled).
func (w *WorkflowConfig) CleanupEnabled() bool {
	return w != nil && w.CompletionCleanup.Enabled
}
