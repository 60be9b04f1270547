package cascade

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
	svc      *Service
	projects *repository.ProjectRepository
	features *repository.FeatureRepository
	tasks    *repository.TaskRepository
	deps     *repository.DependencyRepository
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

	return &testEnv{
		svc:      NewService(repoDB, wf),
		projects: repository.NewProjectRepository(repoDB),
		features: repository.NewFeatureRepository(repoDB),
		tasks:    repository.NewTaskRepository(repoDB),
		deps:     repository.NewDependencyRepository(repoDB),
	}
}

func TestRun_Feature_DeletesNonRetainedTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	feature := &models.Feature{Name: "F", Status: "completed"}
	require.NoError(t, env.features.Create(ctx, feature))

	task := &models.Task{Title: "t1", Status: "completed", FeatureID: &feature.ID}
	require.NoError(t, env.tasks.Create(ctx, task))

	report, err := env.svc.Run(ctx, models.EntityTypeFeature, feature.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, report.DeletedTaskIDs)
	assert.Empty(t, report.RetainedTaskIDs)
	assert.Empty(t, report.Errors)

	_, err = env.tasks.GetByID(ctx, task.ID)
	require.Error(t, err)
	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRun_Feature_RetainsTaggedTask(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	feature := &models.Feature{Name: "F", Status: "completed"}
	require.NoError(t, env.features.Create(ctx, feature))

	task := &models.Task{Title: "keep me", Status: "completed", FeatureID: &feature.ID, Tags: []string{"critical"}}
	require.NoError(t, env.tasks.Create(ctx, task))

	report, err := env.svc.Run(ctx, models.EntityTypeFeature, feature.ID)
	require.NoError(t, err)
	assert.Empty(t, report.DeletedTaskIDs)
	assert.Equal(t, []string{task.ID}, report.RetainedTaskIDs)

	retrieved, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, retrieved.ID)
}

func TestRun_Feature_DeletesTaskDependencyEdges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	feature := &models.Feature{Name: "F", Status: "completed"}
	require.NoError(t, env.features.Create(ctx, feature))

	task := &models.Task{Title: "t1", Status: "completed", FeatureID: &feature.ID}
	require.NoError(t, env.tasks.Create(ctx, task))
	project := &models.Project{Name: "P", Status: "draft"}
	require.NoError(t, env.projects.Create(ctx, project))
	other := &models.Task{Title: "other", Status: "pending", ProjectID: &project.ID}
	require.NoError(t, env.tasks.Create(ctx, other))

	require.NoError(t, env.deps.Create(ctx, &models.Dependency{
		FromTaskID: other.ID, ToTaskID: task.ID, Type: models.DependencyBlocks,
	}))

	_, err := env.svc.Run(ctx, models.EntityTypeFeature, feature.ID)
	require.NoError(t, err)

	remaining, err := env.deps.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRun_Project_CollectsDirectAndFeatureTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	project := &models.Project{Name: "P", Status: "completed"}
	require.NoError(t, env.projects.Create(ctx, project))

	feature := &models.Feature{Name: "F", Status: "completed", ProjectID: &project.ID}
	require.NoError(t, env.features.Create(ctx, feature))

	direct := &models.Task{Title: "direct", Status: "completed", ProjectID: &project.ID}
	require.NoError(t, env.tasks.Create(ctx, direct))
	viaFeature := &models.Task{Title: "via feature", Status: "completed", FeatureID: &feature.ID}
	require.NoError(t, env.tasks.Create(ctx, viaFeature))

	report, err := env.svc.Run(ctx, models.EntityTypeProject, project.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{direct.ID, viaFeature.ID}, report.DeletedTaskIDs)
}

func TestRun_RejectsNonContainerEntityType(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Run(ctx, models.EntityTypeTask, "whatever")
	assert.Error(t, err)
}
