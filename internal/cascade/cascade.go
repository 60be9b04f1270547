// Package cascade implements the completion cascade: when a container
// (project or feature) transitions into a terminal status and
// completion cleanup is enabled, every task under it that doesn't
// carry a retained tag is deleted along with its dependencies and
// sections.
package cascade

import (
	"context"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
)

// Service runs the completion cascade. It implements
// status.CascadeRunner without importing the status package, avoiding
// an import cycle (status already depends on this interface, not this
// package, to construct the other direction).
type Service struct {
	db       *repository.DB
	projects *repository.ProjectRepository
	features *repository.FeatureRepository
	tasks    *repository.TaskRepository
	deps     *repository.DependencyRepository
	sections *repository.SectionRepository
	tags     *repository.TagRepository
	workflow *workflow.Service
}

// NewService creates a cascade Service.
func NewService(db *repository.DB, wf *workflow.Service) *Service {
	return &Service{
		db:       db,
		projects: repository.NewProjectRepository(db),
		features: repository.NewFeatureRepository(db),
		tasks:    repository.NewTaskRepository(db),
		deps:     repository.NewDependencyRepository(db),
		sections: repository.NewSectionRepository(db),
		tags:     repository.NewTagRepository(db),
		workflow: wf,
	}
}

// Run executes the cascade for a container that just reached a
// terminal status. Each task's deletion runs in its own transaction so
// one task's failure doesn't roll back deletions already committed for
// its siblings; every failure is recorded in the report rather than
// aborting the whole run, matching the storage layer's "best-effort,
// per-task transaction" contract.
func (s *Service) Run(ctx context.Context, entityType models.EntityType, entityID string) (*models.CompletionCascadeReport, error) {
	report := &models.CompletionCascadeReport{EntityType: entityType, EntityID: entityID}

	candidates, err := s.collectTasks(ctx, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("collect tasks for cascade: %w", err)
	}

	for _, task := range candidates {
		retained, err := s.tags.HasAnyTag(ctx, models.EntityTypeTask, task.ID, s.workflow.RetainTags())
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %s: check retain tags: %v", task.ID, err))
			continue
		}
		if retained {
			report.RetainedTaskIDs = append(report.RetainedTaskIDs, task.ID)
			continue
		}

		if err := s.deleteTask(ctx, task.ID); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("task %s: %v", task.ID, err))
			continue
		}
		report.DeletedTaskIDs = append(report.DeletedTaskIDs, task.ID)
	}

	return report, nil
}

// collectTasks gathers every task under a container. For a project
// this includes tasks attached directly to it as well as tasks
// belonging to any of its features, since a project reaching a
// terminal status implies everything beneath it is also finished.
func (s *Service) collectTasks(ctx context.Context, entityType models.EntityType, entityID string) ([]*models.Task, error) {
	switch entityType {
	case models.EntityTypeFeature:
		return s.tasks.ListByFeature(ctx, entityID)
	case models.EntityTypeProject:
		direct, err := s.tasks.ListByProject(ctx, entityID)
		if err != nil {
			return nil, err
		}
		features, err := s.features.ListByProject(ctx, entityID)
		if err != nil {
			return nil, err
		}
		all := direct
		for _, f := range features {
			tasks, err := s.tasks.ListByFeature(ctx, f.ID)
			if err != nil {
				return nil, err
			}
			all = append(all, tasks...)
		}
		return all, nil
	default:
		return nil, fmt.Errorf("not a container entity type: %s", entityType)
	}
}

// deleteTask removes a task's dependency edges, sections, tags, and the
// task row itself in one transaction.
func (s *Service) deleteTask(ctx context.Context, taskID string) error {
	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin cascade delete", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deps.DeleteForTaskInTx(ctx, tx, taskID); err != nil {
		return err
	}
	if err := s.sections.DeleteForEntityInTx(ctx, tx, models.EntityTypeTask, taskID); err != nil {
		return err
	}
	if err := s.tasks.DeleteInTx(ctx, tx, taskID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit cascade delete", err)
	}
	return nil
}
