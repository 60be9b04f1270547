// Package workflow provides a centralized service for querying the
// role-to-status mapping across the rest of the system, wrapping the
// config package's WorkflowConfig with entity-type-aware convenience
// methods built around roles (queue/work/review/blocked/terminal).
package workflow

import (
	"strings"

	"github.com/jwwelbor/shark-orchestrator/internal/config"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// Service answers role/status questions against a live WorkflowConfig
// snapshot. It never returns nil or panics on unknown input; unknown
// statuses are treated as "no role" rather than an error, since a
// status can briefly lag a just-reloaded config.
type Service struct {
	loader *config.WorkflowLoader
}

// NewService wraps a WorkflowLoader.
func NewService(loader *config.WorkflowLoader) *Service {
	return &Service{loader: loader}
}

// current returns the live config snapshot.
func (s *Service) current() *config.WorkflowConfig {
	return s.loader.Current()
}

// GetInitialStatus returns the first queue-role status configured for
// an entity type, used as a new entity's default status.
func (s *Service) GetInitialStatus(entityType models.EntityType) string {
	statuses := s.current().GetStatusesForRole(string(entityType), string(models.RoleQueue))
	if len(statuses) == 0 {
		return ""
	}
	return statuses[0]
}

// RoleForStatus returns the role a status maps to for an entity type,
// and whether the status is recognized at all.
func (s *Service) RoleForStatus(entityType models.EntityType, status string) (models.Role, bool) {
	role, ok := s.current().GetRoleForStatus(string(entityType), status)
	if !ok {
		return "", false
	}
	return models.Role(role), true
}

// IsTerminalStatus reports whether status is one of entityType's
// terminal statuses.
func (s *Service) IsTerminalStatus(entityType models.EntityType, status string) bool {
	return s.current().IsTerminalStatus(string(entityType), status)
}

// IsKnownStatus reports whether status is configured at all for an
// entity type.
func (s *Service) IsKnownStatus(entityType models.EntityType, status string) bool {
	return s.current().IsKnownStatus(string(entityType), status)
}

// StatusesForRole returns every status mapped to a role for an entity
// type, used by the recommendation engine to find every "queue" status
// worth considering as a candidate.
func (s *Service) StatusesForRole(entityType models.EntityType, role models.Role) []string {
	return s.current().GetStatusesForRole(string(entityType), string(role))
}

// CleanupEnabled reports whether the completion cascade should run when
// a container (project or feature) reaches a terminal status.
func (s *Service) CleanupEnabled() bool {
	return s.current().CleanupEnabled()
}

// RetainTags returns the tag set the completion cascade preserves.
func (s *Service) RetainTags() []string {
	return s.current().RetainTags()
}

// MatchesAnyRetainTag reports whether any of an entity's tags
// case-insensitively match the configured retain-tag set.
func (s *Service) MatchesAnyRetainTag(tags []string) bool {
	retain := s.RetainTags()
	if len(retain) == 0 {
		return false
	}
	wanted := make(map[string]struct{}, len(retain))
	for _, t := range retain {
		wanted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(t))]; ok {
			return true
		}
	}
	return false
}
