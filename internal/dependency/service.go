package dependency

import (
	"context"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
)

// Service wires the cycle detector to persisted storage: every mutation
// loads the current BLOCKS graph, validates the new edges against it,
// and only then persists, all inside one transaction so a concurrent
// writer can't sneak a conflicting edge in between the check and the
// insert.
type Service struct {
	deps *repository.DependencyRepository
	db   *repository.DB
}

// NewService creates a dependency Service.
func NewService(db *repository.DB, deps *repository.DependencyRepository) *Service {
	return &Service{db: db, deps: deps}
}

// CreateOne validates and persists a single dependency edge.
func (s *Service) CreateOne(ctx context.Context, d *models.Dependency) error {
	return s.createBatch(ctx, []*models.Dependency{d})
}

// CreateLinear builds and persists a linear chain of BLOCKS edges over
// taskIDs in order.
func (s *Service) CreateLinear(ctx context.Context, taskIDs []string, unblockAt *models.Role) ([]*models.Dependency, error) {
	deps, err := BuildLinear(taskIDs, models.DependencyBlocks, unblockAt)
	if err != nil {
		return nil, err
	}
	if err := s.createBatch(ctx, deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// CreateFanOut builds and persists BLOCKS edges from a single source to
// every target.
func (s *Service) CreateFanOut(ctx context.Context, sourceID string, targetIDs []string, unblockAt *models.Role) ([]*models.Dependency, error) {
	deps, err := BuildFanOut(sourceID, targetIDs, models.DependencyBlocks, unblockAt)
	if err != nil {
		return nil, err
	}
	if err := s.createBatch(ctx, deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// CreateFanIn builds and persists BLOCKS edges from every source to a
// single sink.
func (s *Service) CreateFanIn(ctx context.Context, sourceIDs []string, sinkID string, unblockAt *models.Role) ([]*models.Dependency, error) {
	deps, err := BuildFanIn(sourceIDs, sinkID, models.DependencyBlocks, unblockAt)
	if err != nil {
		return nil, err
	}
	if err := s.createBatch(ctx, deps); err != nil {
		return nil, err
	}
	return deps, nil
}

func (s *Service) createBatch(ctx context.Context, deps []*models.Dependency) error {
	existing, err := s.deps.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load existing dependencies: %w", err)
	}

	detector := NewDetector()
	detector.LoadBlocksEdges(existing)

	if err := ValidateBatch(ctx, detector, deps); err != nil {
		return models.NewValidationError("dependencies", err.Error())
	}

	tx, err := s.db.BeginTxContext(ctx)
	if err != nil {
		return models.NewDatabaseError("begin create dependencies", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, dep := range deps {
		if err := s.deps.CreateInTx(ctx, tx, dep); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.NewDatabaseError("commit create dependencies", err)
	}
	return nil
}
