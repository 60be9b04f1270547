package dependency

import (
	"context"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// BuildLinear builds a chain of dependencies taskIDs[0] -> taskIDs[1]
// -> ... -> taskIDs[n-1], where each task blocks the one after it from
// starting until it finishes. Requires at least two tasks.
func BuildLinear(taskIDs []string, depType models.DependencyType, unblockAt *models.Role) ([]*models.Dependency, error) {
	if len(taskIDs) < 2 {
		return nil, fmt.Errorf("linear batch requires at least 2 tasks, got %d", len(taskIDs))
	}
	deps := make([]*models.Dependency, 0, len(taskIDs)-1)
	for i := 1; i < len(taskIDs); i++ {
		deps = append(deps, newDependency(taskIDs[i-1], taskIDs[i], depType, unblockAt))
	}
	return deps, nil
}

// BuildFanOut builds one edge from a single sourceID to each of
// targetIDs: every target depends on the same source completing before
// it can start. Requires at least one target.
func BuildFanOut(sourceID string, targetIDs []string, depType models.DependencyType, unblockAt *models.Role) ([]*models.Dependency, error) {
	if len(targetIDs) == 0 {
		return nil, fmt.Errorf("fan-out batch requires at least 1 target task")
	}
	deps := make([]*models.Dependency, 0, len(targetIDs))
	for _, target := range targetIDs {
		if target == sourceID {
			return nil, fmt.Errorf("task cannot depend on itself: %s", target)
		}
		deps = append(deps, newDependency(sourceID, target, depType, unblockAt))
	}
	return deps, nil
}

// BuildFanIn builds one edge from each of sourceIDs to a single
// sinkID: the sink depends on every source completing before it can
// start. Requires at least one source.
func BuildFanIn(sourceIDs []string, sinkID string, depType models.DependencyType, unblockAt *models.Role) ([]*models.Dependency, error) {
	if len(sourceIDs) == 0 {
		return nil, fmt.Errorf("fan-in batch requires at least 1 source task")
	}
	deps := make([]*models.Dependency, 0, len(sourceIDs))
	for _, source := range sourceIDs {
		if source == sinkID {
			return nil, fmt.Errorf("task cannot depend on itself: %s", sinkID)
		}
		deps = append(deps, newDependency(source, sinkID, depType, unblockAt))
	}
	return deps, nil
}

func newDependency(fromTaskID, toTaskID string, depType models.DependencyType, unblockAt *models.Role) *models.Dependency {
	return &models.Dependency{
		FromTaskID: fromTaskID,
		ToTaskID:   toTaskID,
		Type:       depType,
		UnblockAt:  unblockAt,
	}
}

// ValidateBatch checks every dependency in a batch against the
// detector in sequence, adding each edge to the graph as it passes so
// later edges in the same batch see earlier ones, so a cycle formed by
// the batch's own edges is rejected as well as one formed against the
// edges already loaded into the detector.
func ValidateBatch(ctx context.Context, d *Detector, deps []*models.Dependency) error {
	for _, dep := range deps {
		if dep.Type != models.DependencyBlocks {
			continue
		}
		if err := d.ValidateNewEdge(ctx, dep.FromTaskID, dep.ToTaskID); err != nil {
			return err
		}
		d.AddEdge(dep.FromTaskID, dep.ToTaskID)
	}
	return nil
}
