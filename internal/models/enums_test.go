package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityType_IsValid(t *testing.T) {
	assert.True(t, EntityTypeProject.IsValid())
	assert.True(t, EntityTypeFeature.IsValid())
	assert.True(t, EntityTypeTask.IsValid())
	assert.False(t, EntityType("widget").IsValid())
}

func TestPriority_RankAndIsValid(t *testing.T) {
	assert.Equal(t, 3, PriorityHigh.Rank())
	assert.Equal(t, 2, PriorityMedium.Rank())
	assert.Equal(t, 1, PriorityLow.Rank())
	assert.Equal(t, 0, Priority("nonsense").Rank())

	assert.True(t, PriorityHigh.IsValid())
	assert.False(t, Priority("").IsValid())
	assert.False(t, Priority("nonsense").IsValid())
}

func TestPriority_RankIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, 3, Priority("high").Rank())
}

func TestNormalizePriority_UpperCases(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority("high"))
	assert.Equal(t, PriorityLow, NormalizePriority("Low"))
}

func TestRoleAtLeast_OrdersQueueWorkReviewTerminal(t *testing.T) {
	assert.True(t, RoleAtLeast(RoleWork, RoleQueue))
	assert.True(t, RoleAtLeast(RoleTerminal, RoleTerminal))
	assert.False(t, RoleAtLeast(RoleQueue, RoleWork))
}

func TestRoleAtLeast_BlockedNeverSatisfiesThreshold(t *testing.T) {
	assert.False(t, RoleAtLeast(RoleBlocked, RoleQueue))
}

func TestRoleAtLeast_UnknownRequiredRoleIsFalse(t *testing.T) {
	assert.False(t, RoleAtLeast(RoleWork, Role("custom")))
}

func TestDependencyType_IsValid(t *testing.T) {
	assert.True(t, DependencyBlocks.IsValid())
	assert.True(t, DependencyRelatesTo.IsValid())
	assert.True(t, DependencyIsBlockedBy.IsValid())
	assert.False(t, DependencyType("blocks").IsValid())
}

func TestTrigger_IsValid(t *testing.T) {
	assert.True(t, TriggerStart.IsValid())
	assert.True(t, TriggerReopen.IsValid())
	assert.False(t, Trigger("restart").IsValid())
}
