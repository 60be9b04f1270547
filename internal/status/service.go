// Package status implements the status progression service: proposing
// and applying status transitions for projects, features, and tasks
// against the configured role mapping, recording a role-transition
// audit row whenever an entity's role actually changes, and triggering
// the completion cascade when a container reaches a terminal status.
package status

import (
	"context"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
)

// CascadeRunner is invoked after a container (project or feature)
// commits a transition into a terminal status. Implemented by the
// cascade package; accepted here as an interface so this package
// doesn't import it directly, since the cascade itself calls back into
// status-aware role lookups.
type CascadeRunner interface {
	Run(ctx context.Context, entityType models.EntityType, entityID string) (*models.CompletionCascadeReport, error)
}

// Service proposes and applies status transitions, computing a
// Decision before persisting anything and returning it to the caller
// alongside any completion-cascade report the transition triggered.
type Service struct {
	db             *repository.DB
	projects       *repository.ProjectRepository
	features       *repository.FeatureRepository
	tasks          *repository.TaskRepository
	roleTransition *repository.RoleTransitionRepository
	workflow       *workflow.Service
	cascade        CascadeRunner
}

// NewService creates a Service. cascade may be nil if completion
// cleanup is never exercised (e.g. in tests of the progression logic
// alone).
func NewService(db *repository.DB, wf *workflow.Service, cascade CascadeRunner) *Service {
	return &Service{
		db:             db,
		projects:       repository.NewProjectRepository(db),
		features:       repository.NewFeatureRepository(db),
		tasks:          repository.NewTaskRepository(db),
		roleTransition: repository.NewRoleTransitionRepository(db),
		workflow:       wf,
		cascade:        cascade,
	}
}

// SetCascadeRunner wires the completion cascade in after construction,
// letting callers break the status <-> cascade initialization order.
func (s *Service) SetCascadeRunner(cascade CascadeRunner) {
	s.cascade = cascade
}

// ProposeTransition decides whether currentStatus -> newStatus is
// permitted for an entity type, without touching storage. Only the
// "reopen" trigger may move an entity out of a terminal status; every
// other trigger targeting a terminal current status is rejected
// outright, regardless of what newStatus is.
func (s *Service) ProposeTransition(entityType models.EntityType, currentStatus, newStatus string, trigger models.Trigger) Decision {
	if !trigger.IsValid() {
		return Rejected(fmt.Sprintf("unknown trigger %q", trigger))
	}
	if !s.workflow.IsKnownStatus(entityType, newStatus) {
		return Rejected(fmt.Sprintf("status %q is not configured for %s", newStatus, entityType))
	}

	if s.workflow.IsTerminalStatus(entityType, currentStatus) && trigger != models.TriggerReopen {
		return Rejected(fmt.Sprintf("%s is in a terminal status; only reopen may transition out", entityType))
	}

	newRole, ok := s.workflow.RoleForStatus(entityType, newStatus)
	if !ok {
		return Rejected(fmt.Sprintf("status %q has no configured role", newStatus))
	}

	currentRole, ok := s.workflow.RoleForStatus(entityType, currentStatus)
	if ok && currentRole == newRole {
		return AllowedNoRoleChange(newRole)
	}
	return Allowed(newRole)
}

// ApplyTransition proposes, then atomically applies, a status
// transition for a task: updates status + version, and — only when the
// decision changes role — appends a role-transition audit row, all in
// one transaction.
func (s *Service) ApplyTransition(ctx context.Context, taskID string, expectedVersion int64, newStatus string, trigger models.Trigger) (Decision, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return Decision{}, err
	}

	decision := s.ProposeTransition(models.EntityTypeTask, task.Status, newStatus, trigger)
	if !decision.IsAllowed() {
		return decision, models.NewStructuralConflictError(string(models.EntityTypeTask), taskID, decision.Reason)
	}

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		return decision, models.NewDatabaseError("begin apply transition", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := s.tasks.ApplyStatus(ctx, tx, taskID, newStatus, expectedVersion); err != nil {
		return decision, err
	}

	if decision.ChangesRole() {
		currentRole, _ := s.workflow.RoleForStatus(models.EntityTypeTask, task.Status)
		if err := s.roleTransition.AppendInTx(ctx, tx, &models.RoleTransition{
			EntityID:   taskID,
			EntityType: models.EntityTypeTask,
			FromRole:   currentRole,
			ToRole:     decision.NewRole,
			FromStatus: task.Status,
			ToStatus:   newStatus,
			Trigger:    trigger,
		}); err != nil {
			return decision, err
		}
	}

	if err := tx.Commit(); err != nil {
		return decision, models.NewDatabaseError("commit apply transition", err)
	}

	return decision, nil
}

// ApplyContainerTransition applies a status transition to a project or
// feature, and — when the new status is terminal and completion
// cleanup is enabled — runs the completion cascade after the
// transition commits.
func (s *Service) ApplyContainerTransition(ctx context.Context, entityType models.EntityType, entityID string, expectedVersion int64, newStatus string, trigger models.Trigger) (Decision, *models.CompletionCascadeReport, error) {
	if entityType != models.EntityTypeProject && entityType != models.EntityTypeFeature {
		return Decision{}, nil, fmt.Errorf("not a container entity type: %s", entityType)
	}

	currentStatus, err := s.containerStatus(ctx, entityType, entityID)
	if err != nil {
		return Decision{}, nil, err
	}

	decision := s.ProposeTransition(entityType, currentStatus, newStatus, trigger)
	if !decision.IsAllowed() {
		return decision, nil, models.NewStructuralConflictError(string(entityType), entityID, decision.Reason)
	}

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		return decision, nil, models.NewDatabaseError("begin apply container transition", err)
	}

	switch entityType {
	case models.EntityTypeProject:
		_, err = s.projects.ApplyStatus(ctx, tx, entityID, newStatus, expectedVersion)
	case models.EntityTypeFeature:
		_, err = s.features.ApplyStatus(ctx, tx, entityID, newStatus, expectedVersion)
	}
	if err != nil {
		_ = tx.Rollback()
		return decision, nil, err
	}

	if decision.ChangesRole() {
		currentRole, _ := s.workflow.RoleForStatus(entityType, currentStatus)
		if err := s.roleTransition.AppendInTx(ctx, tx, &models.RoleTransition{
			EntityID:   entityID,
			EntityType: entityType,
			FromRole:   currentRole,
			ToRole:     decision.NewRole,
			FromStatus: currentStatus,
			ToStatus:   newStatus,
			Trigger:    trigger,
		}); err != nil {
			_ = tx.Rollback()
			return decision, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return decision, nil, models.NewDatabaseError("commit apply container transition", err)
	}

	if !s.workflow.IsTerminalStatus(entityType, newStatus) || !s.workflow.CleanupEnabled() || s.cascade == nil {
		return decision, nil, nil
	}

	report, err := s.cascade.Run(ctx, entityType, entityID)
	if err != nil {
		return decision, nil, fmt.Errorf("completion cascade: %w", err)
	}
	return decision, report, nil
}

func (s *Service) containerStatus(ctx context.Context, entityType models.EntityType, entityID string) (string, error) {
	switch entityType {
	case models.EntityTypeProject:
		p, err := s.projects.GetByID(ctx, entityID)
		if err != nil {
			return "", err
		}
		return p.Status, nil
	case models.EntityTypeFeature:
		f, err := s.features.GetByID(ctx, entityID)
		if err != nil {
			return "", err
		}
		return f.Status, nil
	default:
		return "", fmt.Errorf("not a container entity type: %s", entityType)
	}
}
