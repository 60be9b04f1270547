package recommendation

import (
	"context"
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/config"
	"github.com/jwwelbor/shark-orchestrator/internal/db"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/jwwelbor/shark-orchestrator/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	engine    *Engine
	tasks     *repository.TaskRepository
	deps      *repository.DependencyRepository
	db        *repository.DB
	projectID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.InitDB(":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	repoDB := repository.NewDB(conn)
	loader, err := config.NewWorkflowLoader("testdata-does-not-exist.yaml")
	require.NoError(t, err)
	wf := workflow.NewService(loader)

	tasks := repository.NewTaskRepository(repoDB)
	deps := repository.NewDependencyRepository(repoDB)
	tags := repository.NewTagRepository(repoDB)

	projects := repository.NewProjectRepository(repoDB)
	project := &models.Project{Name: "recommendation-test-project", Status: "draft"}
	require.NoError(t, projects.Create(context.Background(), project))

	return &testEnv{
		engine:    NewEngine(tasks, deps, tags, wf),
		tasks:     tasks,
		deps:      deps,
		db:        repoDB,
		projectID: project.ID,
	}
}

// mustCreate fills in Complexity and a parent project when the caller
// didn't set one, so every task satisfies Task.Validate without every
// test wiring up its own parent.
func (e *testEnv) mustCreate(t *testing.T, task *models.Task) *models.Task {
	t.Helper()
	if task.Complexity == 0 {
		task.Complexity = 1
	}
	if task.FeatureID == nil && task.ProjectID == nil {
		task.ProjectID = &e.projectID
	}
	require.NoError(t, e.tasks.Create(context.Background(), task))
	return task
}

func TestRecommend_Complete_WhenEveryTaskIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "done", Status: "completed"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeComplete, result.Mode)
	assert.Equal(t, NoCandidatesNothingPending, result.NoCandidates)
	assert.Empty(t, result.Tasks)
}

func TestRecommend_Complete_WhenOnlyBlockedRoleTasksExist(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "stuck", Status: "blocked"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeComplete, result.Mode)
}

func TestRecommend_SkipsQueueTaskWithUnfinishedDependency(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	blocker := env.mustCreate(t, &models.Task{Title: "blocker", Status: "pending"})
	blocked := env.mustCreate(t, &models.Task{Title: "waits", Status: "pending"})

	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: blocker.ID, ToTaskID: blocked.ID, Type: models.DependencyBlocks,
	}))

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, blocker.ID, result.Tasks[0].ID)
}

func TestRecommend_Sequential_SingleUnblockedTask(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "only one", Status: "pending"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeSequential, result.Mode)
	require.Len(t, result.Tasks, 1)
}

func TestRecommend_ParallelBatch_WhenNothingInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "a", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "b", Status: "pending"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeParallelBatch, result.Mode)
	assert.Len(t, result.Tasks, 2)
	assert.Equal(t, 2, result.TotalCandidates)
}

func TestRecommend_IncrementalBatch_WhenWorkRoleTaskIsInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "already started", Status: "in-progress"})
	env.mustCreate(t, &models.Task{Title: "a", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "b", Status: "pending"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeIncrementalBatch, result.Mode)
	assert.Len(t, result.Tasks, 2)
}

func TestRecommend_IncrementalBatch_WhenReviewRoleTaskIsInFlight(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "in review", Status: "in-review"})
	env.mustCreate(t, &models.Task{Title: "a", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "b", Status: "pending"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeIncrementalBatch, result.Mode)
}

func TestRecommend_ParallelBatch_IgnoresRelatesToEdgesAmongReadyTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.mustCreate(t, &models.Task{Title: "a", Status: "pending"})
	b := env.mustCreate(t, &models.Task{Title: "b", Status: "pending"})

	// a relates_to b carries no ordering constraint and isn't a work or
	// review role task, so the pair still ships as PARALLEL_BATCH.
	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: a.ID, ToTaskID: b.ID, Type: models.DependencyRelatesTo,
	}))

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeParallelBatch, result.Mode)
}

func TestRecommend_Waiting_WhenQueueTaskIsBlockedByUnfinishedDependencyAndSomethingIsInFlight(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	blocker := env.mustCreate(t, &models.Task{Title: "blocker", Status: "in-progress"})
	blocked := env.mustCreate(t, &models.Task{Title: "waits", Status: "pending"})

	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: blocker.ID, ToTaskID: blocked.ID, Type: models.DependencyBlocks,
	}))

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeWaiting, result.Mode)
	assert.Equal(t, NoCandidatesAllInFlightOrTerminal, result.NoCandidates)
}

func TestRecommend_Blocked_WhenQueueTaskIsBlockedAndNothingIsInFlight(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	blocker := env.mustCreate(t, &models.Task{Title: "blocker", Status: "blocked"})
	blocked := env.mustCreate(t, &models.Task{Title: "waits", Status: "pending"})

	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: blocker.ID, ToTaskID: blocked.ID, Type: models.DependencyBlocks,
	}))

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeBlocked, result.Mode)
	assert.Equal(t, NoCandidatesAllPendingBlocked, result.NoCandidates)
}

func TestRecommend_UnblocksOnceBlockerReachesUnblockAtRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	blocker := env.mustCreate(t, &models.Task{Title: "blocker", Status: "in-review"})
	blocked := env.mustCreate(t, &models.Task{Title: "waits", Status: "pending"})

	reviewRole := models.RoleReview
	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: blocker.ID, ToTaskID: blocked.ID, Type: models.DependencyBlocks, UnblockAt: &reviewRole,
	}))

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	assert.Equal(t, ModeIncrementalBatch, result.Mode)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, blocked.ID, result.Tasks[0].ID)
}

func TestRecommend_RespectsLimit(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "a", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "b", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "c", Status: "pending"})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 2, false)
	require.NoError(t, err)
	assert.Len(t, result.Tasks, 2)
	assert.Equal(t, 3, result.TotalCandidates)
}

func TestRecommend_DefaultsLimitToFive(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 7; i++ {
		env.mustCreate(t, &models.Task{Title: "task", Status: "pending"})
	}

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 0, false)
	require.NoError(t, err)
	assert.Len(t, result.Tasks, 5)
	assert.Equal(t, 7, result.TotalCandidates)
}

func TestRecommend_SortsByPriorityThenComplexity(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "low priority", Status: "pending", Priority: models.PriorityLow, Complexity: 1})
	env.mustCreate(t, &models.Task{Title: "high complex", Status: "pending", Priority: models.PriorityHigh, Complexity: 8})
	env.mustCreate(t, &models.Task{Title: "high simple", Status: "pending", Priority: models.PriorityHigh, Complexity: 2})

	result, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	require.Len(t, result.Tasks, 3)
	assert.Equal(t, "high simple", result.Tasks[0].Title)
	assert.Equal(t, "high complex", result.Tasks[1].Title)
	assert.Equal(t, "low priority", result.Tasks[2].Title)
}

func TestRecommend_ScopedToProject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	projects := repository.NewProjectRepository(env.db)
	p2 := &models.Project{Name: "P2", Status: "draft"}
	require.NoError(t, projects.Create(ctx, p2))

	env.mustCreate(t, &models.Task{Title: "in p1", Status: "pending"})
	env.mustCreate(t, &models.Task{Title: "in p2", Status: "pending", ProjectID: &p2.ID})

	result, err := env.engine.Recommend(ctx, Scope{Type: ScopeProject, ID: env.projectID}, 10, false)
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "in p1", result.Tasks[0].Title)
}

func TestRecommend_IncludeDetails_CarriesSummary(t *testing.T) {
	env := newTestEnv(t)
	env.mustCreate(t, &models.Task{Title: "a", Status: "pending", Summary: "do the thing"})

	withDetails, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, true)
	require.NoError(t, err)
	require.Len(t, withDetails.Tasks, 1)
	assert.Equal(t, "do the thing", withDetails.Tasks[0].Summary)

	withoutDetails, err := env.engine.Recommend(context.Background(), Scope{Type: ScopeCatalog}, 10, false)
	require.NoError(t, err)
	require.Len(t, withoutDetails.Tasks, 1)
	assert.Empty(t, withoutDetails.Tasks[0].Summary)
}
