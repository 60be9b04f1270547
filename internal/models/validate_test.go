package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_Validate_RequiresNameAndStatus(t *testing.T) {
	require.Error(t, (&Project{Status: "planned"}).Validate())
	require.Error(t, (&Project{Name: "Billing"}).Validate())
	require.NoError(t, (&Project{Name: "Billing", Status: "planned"}).Validate())
}

func TestProject_EntityType(t *testing.T) {
	assert.Equal(t, EntityTypeProject, (&Project{}).EntityType())
}

func TestFeature_Validate_RejectsInvalidPriority(t *testing.T) {
	f := &Feature{Name: "Checkout", Status: "draft", Priority: Priority("urgent")}
	require.Error(t, f.Validate())
}

func TestFeature_Validate_AllowsEmptyPriority(t *testing.T) {
	f := &Feature{Name: "Checkout", Status: "draft"}
	require.NoError(t, f.Validate())
}

func TestFeature_EntityType(t *testing.T) {
	assert.Equal(t, EntityTypeFeature, (&Feature{}).EntityType())
}

func TestTask_Validate_RequiresAtLeastOneParent(t *testing.T) {
	task := &Task{Title: "Do thing", Status: "pending", Complexity: 5}
	err := task.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "feature_id/project_id", ve.Field)
}

func TestTask_Validate_RejectsComplexityOutOfRange(t *testing.T) {
	projectID := "p1"
	task := &Task{Title: "Do thing", Status: "pending", Complexity: 0, ProjectID: &projectID}
	require.Error(t, task.Validate())

	task.Complexity = 11
	require.Error(t, task.Validate())

	task.Complexity = 5
	require.NoError(t, task.Validate())
}

func TestTask_EntityType(t *testing.T) {
	assert.Equal(t, EntityTypeTask, (&Task{}).EntityType())
}

func TestSection_Validate_RejectsUnknownEntityTypeAndFormat(t *testing.T) {
	s := &Section{Title: "Notes", EntityType: EntityTypeTask, EntityID: "t1", ContentFormat: ContentFormatMarkdown}
	require.NoError(t, s.Validate())

	s.EntityType = EntityType("widget")
	require.Error(t, s.Validate())

	s.EntityType = EntityTypeTask
	s.ContentFormat = ContentFormat("html")
	require.Error(t, s.Validate())
}

func TestSection_Validate_RejectsNegativeOrdinal(t *testing.T) {
	s := &Section{Title: "Notes", EntityType: EntityTypeTask, EntityID: "t1", ContentFormat: ContentFormatPlain, Ordinal: -1}
	require.Error(t, s.Validate())
}

func TestDependency_Validate_RejectsEmptyEndpoints(t *testing.T) {
	d := &Dependency{Type: DependencyBlocks}
	require.Error(t, d.Validate())
}

func TestDependency_Validate_RejectsUnblockAtOnNonBlocksEdge(t *testing.T) {
	role := RoleWork
	d := &Dependency{FromTaskID: "a", ToTaskID: "b", Type: DependencyRelatesTo, UnblockAt: &role}
	require.Error(t, d.Validate())
}

func TestDependency_Validate_AcceptsBlocksEdgeWithUnblockAt(t *testing.T) {
	role := RoleWork
	d := &Dependency{FromTaskID: "a", ToTaskID: "b", Type: DependencyBlocks, UnblockAt: &role}
	require.NoError(t, d.Validate())
}
