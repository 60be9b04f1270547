package dependency

import (
	"context"
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/db"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/jwwelbor/shark-orchestrator/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taskFactory creates tasks attached to one shared parent project, so
// Task.Validate's parent requirement and the tasks.project_id foreign
// key are both satisfied without every test wiring up its own project.
type taskFactory struct {
	t         *testing.T
	tasks     *repository.TaskRepository
	projectID string
}

func (f *taskFactory) create(title string) string {
	f.t.Helper()
	task := &models.Task{Title: title, Status: "open", ProjectID: &f.projectID}
	require.NoError(f.t, f.tasks.Create(context.Background(), task))
	return task.ID
}

// newTestService opens a fresh in-memory database, applies the
// production schema, and returns a dependency Service plus a factory
// for creating the tasks a test wants to wire edges between.
func newTestService(t *testing.T) (*Service, *taskFactory) {
	t.Helper()
	conn, err := db.InitDB(":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	repoDB := repository.NewDB(conn)
	tasks := repository.NewTaskRepository(repoDB)
	deps := repository.NewDependencyRepository(repoDB)

	project := &models.Project{Name: "dependency-service-test-project", Status: "planned"}
	require.NoError(t, repository.NewProjectRepository(repoDB).Create(context.Background(), project))

	return NewService(repoDB, deps), &taskFactory{t: t, tasks: tasks, projectID: project.ID}
}

func TestService_CreateOne_PersistsEdge(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	a := tasks.create("A")
	b := tasks.create("B")

	err := svc.CreateOne(ctx, &models.Dependency{FromTaskID: a, ToTaskID: b, Type: models.DependencyBlocks})
	require.NoError(t, err)

	all, err := svc.deps.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a, all[0].FromTaskID)
	assert.Equal(t, b, all[0].ToTaskID)
}

func TestService_CreateOne_RejectsCycleAgainstPersistedEdges(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	a := tasks.create("A")
	b := tasks.create("B")

	require.NoError(t, svc.CreateOne(ctx, &models.Dependency{FromTaskID: a, ToTaskID: b, Type: models.DependencyBlocks}))

	err := svc.CreateOne(ctx, &models.Dependency{FromTaskID: b, ToTaskID: a, Type: models.DependencyBlocks})
	require.Error(t, err)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestService_CreateLinear_PersistsWholeChain(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	t1 := tasks.create("T1")
	t2 := tasks.create("T2")
	t3 := tasks.create("T3")

	deps, err := svc.CreateLinear(ctx, []string{t1, t2, t3}, nil)
	require.NoError(t, err)
	assert.Len(t, deps, 2)

	all, err := svc.deps.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestService_CreateLinear_RejectsEdgeThatClosesTheChainIntoACycle(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	t1 := tasks.create("T1")
	t2 := tasks.create("T2")
	t3 := tasks.create("T3")

	_, err := svc.CreateLinear(ctx, []string{t1, t2, t3}, nil)
	require.NoError(t, err)

	err = svc.CreateOne(ctx, &models.Dependency{FromTaskID: t3, ToTaskID: t1, Type: models.DependencyBlocks})
	require.Error(t, err)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestService_CreateFanOut_PersistsEveryTargetEdge(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	source := tasks.create("source")
	t1 := tasks.create("t1")
	t2 := tasks.create("t2")

	deps, err := svc.CreateFanOut(ctx, source, []string{t1, t2}, nil)
	require.NoError(t, err)
	assert.Len(t, deps, 2)

	err = svc.CreateOne(ctx, &models.Dependency{FromTaskID: t1, ToTaskID: source, Type: models.DependencyBlocks})
	require.Error(t, err)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestService_CreateFanIn_PersistsEverySourceEdge(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	sink := tasks.create("sink")
	s1 := tasks.create("s1")
	s2 := tasks.create("s2")

	deps, err := svc.CreateFanIn(ctx, []string{s1, s2}, sink, nil)
	require.NoError(t, err)
	assert.Len(t, deps, 2)

	err = svc.CreateOne(ctx, &models.Dependency{FromTaskID: sink, ToTaskID: s1, Type: models.DependencyBlocks})
	require.Error(t, err)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestService_CreateOne_RejectsDuplicateEdge(t *testing.T) {
	ctx := context.Background()
	svc, tasks := newTestService(t)
	a := tasks.create("A")
	b := tasks.create("B")

	require.NoError(t, svc.CreateOne(ctx, &models.Dependency{FromTaskID: a, ToTaskID: b, Type: models.DependencyBlocks}))

	err := svc.CreateOne(ctx, &models.Dependency{FromTaskID: a, ToTaskID: b, Type: models.DependencyBlocks})
	require.Error(t, err)
}
