package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// AgentRoute is the advisory action an external orchestrator should take
// when a task carries a given tag. Advisory only — the core
// scheduling algorithm never reads it; it exists purely for external
// tool dispatch to consult.
type AgentRoute struct {
	Action              string   `yaml:"action"`
	AgentType           string   `yaml:"agent_type,omitempty"`
	Skills              []string `yaml:"skills,omitempty"`
	InstructionTemplate string   `yaml:"instruction_template"`
}

const (
	ActionSpawnAgent    = "spawn_agent"
	ActionPause         = "pause"
	ActionWaitForTriage = "wait_for_triage"
	ActionArchive       = "archive"
)

var ValidActionTypes = []string{ActionSpawnAgent, ActionPause, ActionWaitForTriage, ActionArchive}

// AgentMapping is the top-level agent-mapping.yaml document: a
// tag-to-route table used only as advisory routing hints for external
// tool dispatch.
type AgentMapping struct {
	Routes map[string]AgentRoute `yaml:"routes"`
}

// OrchestratorValidationError carries enough context for an actionable
// error message.
type OrchestratorValidationError struct {
	Tag          string
	FieldName    string
	Problem      string
	SuggestedFix string
}

func (e *OrchestratorValidationError) Error() string {
	return fmt.Sprintf("agent-mapping[%s].%s: %s (%s)", e.Tag, e.FieldName, e.Problem, e.SuggestedFix)
}

// Validate checks a single route's structural requirements.
func (r *AgentRoute) Validate() error {
	if !contains(ValidActionTypes, r.Action) {
		return fmt.Errorf("invalid action type: %s (must be one of: %s)",
			r.Action, strings.Join(ValidActionTypes, ", "))
	}
	if strings.TrimSpace(r.InstructionTemplate) == "" {
		return errors.New("instruction_template is required")
	}
	if r.Action == ActionSpawnAgent {
		if strings.TrimSpace(r.AgentType) == "" {
			return errors.New("agent_type is required for spawn_agent action")
		}
		if len(r.Skills) == 0 {
			return errors.New("skills array is required and must not be empty for spawn_agent action")
		}
	}
	return nil
}

// ValidateWithContext validates a route and returns a structured error
// identifying the offending tag when invalid.
func (r *AgentRoute) ValidateWithContext(tag string) error {
	if !contains(ValidActionTypes, r.Action) {
		return &OrchestratorValidationError{
			Tag: tag, FieldName: "action",
			Problem:      fmt.Sprintf("invalid action type %q", r.Action),
			SuggestedFix: "use one of: " + strings.Join(ValidActionTypes, ", "),
		}
	}
	if strings.TrimSpace(r.InstructionTemplate) == "" {
		return &OrchestratorValidationError{
			Tag: tag, FieldName: "instruction_template",
			Problem:      "missing required field",
			SuggestedFix: "add instruction_template with a {task_id} placeholder",
		}
	}
	if r.Action == ActionSpawnAgent {
		if strings.TrimSpace(r.AgentType) == "" {
			return &OrchestratorValidationError{
				Tag: tag, FieldName: "agent_type",
				Problem:      "missing required field for spawn_agent action",
				SuggestedFix: "add agent_type",
			}
		}
		if len(r.Skills) == 0 {
			return &OrchestratorValidationError{
				Tag: tag, FieldName: "skills",
				Problem:      "empty or missing skills array for spawn_agent action",
				SuggestedFix: "add at least one skill",
			}
		}
	}
	for _, ph := range placeholderPattern.FindAllString(r.InstructionTemplate, -1) {
		if ph != "{task_id}" {
			return &OrchestratorValidationError{
				Tag: tag, FieldName: "instruction_template",
				Problem:      fmt.Sprintf("unknown placeholder %s", ph),
				SuggestedFix: "only {task_id} is substituted",
			}
		}
	}
	return nil
}

// PopulateTemplate replaces {task_id} in the instruction template.
func (r *AgentRoute) PopulateTemplate(taskID string) string {
	return strings.ReplaceAll(r.InstructionTemplate, "{task_id}", taskID)
}

// ValidateAll validates every route in the mapping, returning all errors
// found rather than failing fast.
func (m *AgentMapping) ValidateAll() []*OrchestratorValidationError {
	var errs []*OrchestratorValidationError
	for tag, route := range m.Routes {
		if err := route.ValidateWithContext(tag); err != nil {
			if ve, ok := err.(*OrchestratorValidationError); ok {
				errs = append(errs, ve)
			}
		}
	}
	return errs
}

// RouteForTags returns the first matching route among a task's tags, in
// the order the tags are given, or nil if none match.
func (m *AgentMapping) RouteForTags(tags []string) *AgentRoute {
	if m == nil {
		return nil
	}
	for _, tag := range tags {
		if route, ok := m.Routes[strings.ToLower(tag)]; ok {
			r := route
			return &r
		}
	}
	return nil
}

var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

func contains(slice []string, target string) bool {
	for _, s := range slice {
		if s == target {
			return true
		}
	}
	return false
}
