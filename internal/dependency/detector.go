// Package dependency provides cycle detection and batch construction
// for the directed graph of BLOCKS/RELATES_TO/IS_BLOCKED_BY edges
// between tasks.
package dependency

import (
	"context"
	"fmt"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
)

// Detector performs DFS-based cycle detection over an in-memory
// adjacency list, loaded from persisted dependency rows (BLOCKS edges
// only) and then extended one AddEdge call at a time as new candidate
// edges are checked.
type Detector struct {
	graph map[string][]string
}

// NewDetector creates an empty detector.
func NewDetector() *Detector {
	return &Detector{graph: make(map[string][]string)}
}

// AddEdge records that fromTask blocks toTask (fromTask -> toTask).
func (d *Detector) AddEdge(fromTask, toTask string) {
	d.graph[fromTask] = append(d.graph[fromTask], toTask)
}

// LoadBlocksEdges populates the detector from a set of persisted
// dependencies, including only BLOCKS edges: those are the ones whose
// cycle would make every task in the cycle permanently unstartable.
// RELATES_TO edges carry no ordering constraint and are excluded.
func (d *Detector) LoadBlocksEdges(deps []*models.Dependency) {
	for _, dep := range deps {
		if dep.Type == models.DependencyBlocks {
			d.AddEdge(dep.FromTaskID, dep.ToTaskID)
		}
	}
}

// DetectCycle runs DFS from startTask and reports the first cycle
// found reachable from it.
func (d *Detector) DetectCycle(ctx context.Context, startTask string) (bool, []string) {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	path := []string{}
	return d.dfs(startTask, visiting, visited, &path)
}

func (d *Detector) dfs(task string, visiting, visited map[string]bool, path *[]string) (bool, []string) {
	if visited[task] {
		return false, nil
	}
	if visiting[task] {
		cycleStart := -1
		for i, t := range *path {
			if t == task {
				cycleStart = i
				break
			}
		}
		cyclePath := append(append([]string{}, (*path)[cycleStart:]...), task)
		return true, cyclePath
	}

	visiting[task] = true
	*path = append(*path, task)

	for _, dep := range d.graph[task] {
		if hasCycle, cyclePath := d.dfs(dep, visiting, visited, path); hasCycle {
			return true, cyclePath
		}
	}

	*path = (*path)[:len(*path)-1]
	visiting[task] = false
	visited[task] = true
	return false, nil
}

// ValidateNewEdge checks whether adding fromTask -> toTask would
// introduce a self-edge or a cycle, without mutating the detector
// permanently.
func (d *Detector) ValidateNewEdge(ctx context.Context, fromTask, toTask string) error {
	if fromTask == toTask {
		return fmt.Errorf("task cannot depend on itself: %s", fromTask)
	}

	d.AddEdge(fromTask, toTask)
	hasCycle, cyclePath := d.DetectCycle(ctx, fromTask)
	d.graph[fromTask] = d.graph[fromTask][:len(d.graph[fromTask])-1]

	if hasCycle {
		return fmt.Errorf("would create circular dependency: %v", cyclePath)
	}
	return nil
}
