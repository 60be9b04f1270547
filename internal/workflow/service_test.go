package workflow

import (
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/config"
	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	loader, err := config.NewWorkflowLoader("testdata-does-not-exist.yaml")
	require.NoError(t, err)
	return NewService(loader)
}

func TestGetInitialStatus_ReturnsFirstQueueStatus(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, "pending", svc.GetInitialStatus(models.EntityTypeTask))
	assert.Equal(t, "draft", svc.GetInitialStatus(models.EntityTypeProject))
}

func TestRoleForStatus_KnownAndUnknown(t *testing.T) {
	svc := newTestService(t)

	role, ok := svc.RoleForStatus(models.EntityTypeTask, "in-progress")
	require.True(t, ok)
	assert.Equal(t, models.RoleWork, role)

	_, ok = svc.RoleForStatus(models.EntityTypeTask, "not-a-status")
	assert.False(t, ok)
}

func TestIsTerminalStatus(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.IsTerminalStatus(models.EntityTypeTask, "completed"))
	assert.False(t, svc.IsTerminalStatus(models.EntityTypeTask, "pending"))
}

func TestIsKnownStatus(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.IsKnownStatus(models.EntityTypeTask, "blocked"))
	assert.False(t, svc.IsKnownStatus(models.EntityTypeTask, "nonexistent"))
}

func TestStatusesForRole(t *testing.T) {
	svc := newTestService(t)
	statuses := svc.StatusesForRole(models.EntityTypeTask, models.RoleQueue)
	assert.ElementsMatch(t, []string{"pending", "backlog"}, statuses)
}

func TestCleanupEnabled_DefaultsFalse(t *testing.T) {
	svc := newTestService(t)
	assert.False(t, svc.CleanupEnabled())
}

func TestMatchesAnyRetainTag(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.MatchesAnyRetainTag([]string{"feature-x", "Critical"}))
	assert.False(t, svc.MatchesAnyRetainTag([]string{"feature-x"}))
	assert.False(t, svc.MatchesAnyRetainTag(nil))
}
