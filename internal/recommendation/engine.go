// Package recommendation implements the recommendation engine: given a
// scope (a project, a feature, or the whole catalog), it answers which
// tasks can start right now, in what order, and whether the caller
// should expect to dispatch them one at a time or as an independent
// batch.
package recommendation

import (
	"context"
	"sort"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
)

// Mode classifies the shape of a recommendation result. PARALLEL_BATCH
// vs. INCREMENTAL_BATCH vs. WAITING vs. BLOCKED are all driven by
// whether any in-flight (work or review role) task exists in scope,
// not by interdependence among the returned tasks or by the blocked
// role.
type Mode string

const (
	// ModeParallelBatch: two or more tasks are ready and nothing in
	// scope is currently in flight — they can all start concurrently.
	ModeParallelBatch Mode = "PARALLEL_BATCH"
	// ModeIncrementalBatch: one or more tasks are ready, but something
	// in scope is already in flight — dispatch alongside existing work
	// rather than all at once.
	ModeIncrementalBatch Mode = "INCREMENTAL_BATCH"
	// ModeSequential: exactly one task is ready and nothing in scope is
	// in flight.
	ModeSequential Mode = "SEQUENTIAL"
	// ModeWaiting: nothing is ready to start, but something in scope is
	// already in flight.
	ModeWaiting Mode = "WAITING"
	// ModeBlocked: nothing is ready and nothing is in flight, but queue-
	// role tasks exist in scope, all blocked by an unfinished dependency.
	ModeBlocked Mode = "BLOCKED"
	// ModeComplete: nothing pending, nothing in flight — scope is done.
	ModeComplete Mode = "COMPLETE"
)

// NoCandidatesReason distinguishes why a request returned zero tasks.
type NoCandidatesReason string

const (
	// NoCandidatesNothingPending: no queue-role tasks exist in scope at
	// all, and nothing is in flight either.
	NoCandidatesNothingPending NoCandidatesReason = "nothing_pending"
	// NoCandidatesAllPendingBlocked: queue-role tasks exist, but every
	// one of them is still blocked by an unfinished dependency.
	NoCandidatesAllPendingBlocked NoCandidatesReason = "all_pending_blocked"
	// NoCandidatesAllInFlightOrTerminal: no queue-role task is ready (none
	// exist, or every one is blocked), but scope isn't finished —
	// something is in flight.
	NoCandidatesAllInFlightOrTerminal NoCandidatesReason = "all_in_flight_or_terminal"
)

// ScopeType narrows which tasks are considered.
type ScopeType string

const (
	ScopeCatalog ScopeType = "catalog"
	ScopeProject ScopeType = "project"
	ScopeFeature ScopeType = "feature"
)

// Scope selects the tasks a recommendation request considers.
type Scope struct {
	Type ScopeType
	// ID is the project or feature ID; ignored for ScopeCatalog.
	ID string
}

// TaskBrief is the recommendation engine's per-task projection: id,
// title, status, priority, complexity, and tags always; Summary only
// when the caller asked for includeDetails.
type TaskBrief struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Status     string          `json:"status"`
	Priority   models.Priority `json:"priority"`
	Complexity int             `json:"complexity"`
	Tags       []string        `json:"tags,omitempty"`
	Summary    string          `json:"summary,omitempty"`
}

// Result is the recommendation engine's answer.
type Result struct {
	Mode            Mode
	Tasks           []TaskBrief
	TotalCandidates int
	NoCandidates    NoCandidatesReason `json:"noCandidates,omitempty"`
}

// Engine implements the recommendation algorithm.
type Engine struct {
	tasks    *repository.TaskRepository
	deps     *repository.DependencyRepository
	tags     *repository.TagRepository
	workflow *workflow.Service
}

// NewEngine creates a recommendation Engine.
func NewEngine(tasks *repository.TaskRepository, deps *repository.DependencyRepository, tags *repository.TagRepository, wf *workflow.Service) *Engine {
	return &Engine{tasks: tasks, deps: deps, tags: tags, workflow: wf}
}

// Recommend returns up to limit tasks that can start now within scope,
// in priority order, classified by Mode. includeDetails controls
// whether each returned TaskBrief carries its Summary.
func (e *Engine) Recommend(ctx context.Context, scope Scope, limit int, includeDetails bool) (*Result, error) {
	all, err := e.tasksInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	var queueCandidates, inFlight []*models.Task
	for _, t := range all {
		role, ok := e.workflow.RoleForStatus(models.EntityTypeTask, t.Status)
		if !ok {
			continue
		}
		switch role {
		case models.RoleQueue:
			queueCandidates = append(queueCandidates, t)
		case models.RoleWork, models.RoleReview:
			inFlight = append(inFlight, t)
		}
	}

	if len(queueCandidates) == 0 {
		if len(inFlight) > 0 {
			return &Result{Mode: ModeWaiting, NoCandidates: NoCandidatesAllInFlightOrTerminal}, nil
		}
		return &Result{Mode: ModeComplete, NoCandidates: NoCandidatesNothingPending}, nil
	}

	unblocked := make([]*models.Task, 0, len(queueCandidates))
	for _, t := range queueCandidates {
		ok, err := e.isUnblocked(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			unblocked = append(unblocked, t)
		}
	}

	if len(unblocked) == 0 {
		if len(inFlight) > 0 {
			return &Result{Mode: ModeWaiting, NoCandidates: NoCandidatesAllInFlightOrTerminal}, nil
		}
		return &Result{Mode: ModeBlocked, NoCandidates: NoCandidatesAllPendingBlocked}, nil
	}

	sortByRecommendationOrder(unblocked)
	totalCandidates := len(unblocked)

	if limit <= 0 {
		limit = 5
	}
	if len(unblocked) > limit {
		unblocked = unblocked[:limit]
	}

	mode := ModeSequential
	switch {
	case len(inFlight) > 0:
		mode = ModeIncrementalBatch
	case len(unblocked) > 1:
		mode = ModeParallelBatch
	}

	briefs, err := e.toBriefs(ctx, unblocked, includeDetails)
	if err != nil {
		return nil, err
	}

	return &Result{Mode: mode, Tasks: briefs, TotalCandidates: totalCandidates}, nil
}

func (e *Engine) toBriefs(ctx context.Context, tasks []*models.Task, includeDetails bool) ([]TaskBrief, error) {
	briefs := make([]TaskBrief, 0, len(tasks))
	for _, t := range tasks {
		tags, err := e.tags.ListForEntity(ctx, models.EntityTypeTask, t.ID)
		if err != nil {
			return nil, models.NewDatabaseError("load task tags for recommendation", err)
		}
		brief := TaskBrief{
			ID:         t.ID,
			Title:      t.Title,
			Status:     t.Status,
			Priority:   t.Priority,
			Complexity: t.Complexity,
			Tags:       tags,
		}
		if includeDetails {
			brief.Summary = t.Summary
		}
		briefs = append(briefs, brief)
	}
	return briefs, nil
}

func (e *Engine) tasksInScope(ctx context.Context, scope Scope) ([]*models.Task, error) {
	switch scope.Type {
	case ScopeProject:
		return e.tasks.ListByProject(ctx, scope.ID)
	case ScopeFeature:
		return e.tasks.ListByFeature(ctx, scope.ID)
	default:
		return e.tasks.List(ctx)
	}
}

// isUnblocked implements the blocking-resolution algorithm: a task is
// unblocked iff, for every inbound BLOCKS edge, the source task's
// current role is at least as advanced as the edge's UnblockAt
// threshold (terminal by default).
func (e *Engine) isUnblocked(ctx context.Context, taskID string) (bool, error) {
	inbound, err := e.deps.ListInbound(ctx, taskID)
	if err != nil {
		return false, err
	}
	for _, dep := range inbound {
		if dep.Type != models.DependencyBlocks {
			continue
		}
		blocker, err := e.tasks.GetByID(ctx, dep.FromTaskID)
		if err != nil {
			return false, err
		}
		blockerRole, ok := e.workflow.RoleForStatus(models.EntityTypeTask, blocker.Status)
		if !ok {
			return false, nil
		}
		if !models.RoleAtLeast(blockerRole, dep.EffectiveUnblockAt()) {
			return false, nil
		}
	}
	return true, nil
}

// sortByRecommendationOrder sorts in place by priority descending, then
// complexity ascending, then creation time ascending — the tie-break
// order the recommendation contract specifies.
func sortByRecommendationOrder(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		pi, pj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
		if pi != pj {
			return pi > pj
		}
		if tasks[i].Complexity != tasks[j].Complexity {
			return tasks[i].Complexity < tasks[j].Complexity
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
