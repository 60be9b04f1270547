package repository

import (
	"context"
	"testing"

	"github.com/jwwelbor/shark-orchestrator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository_Replace_NormalizesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestDB(t))

	require.NoError(t, repo.Replace(ctx, nil, models.EntityTypeTask, "t1", []string{" Bug ", "bug", "Urgent", ""}))

	tags, err := repo.ListForEntity(ctx, models.EntityTypeTask, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bug", "urgent"}, tags)
}

func TestTagRepository_Replace_OverwritesPreviousSet(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestDB(t))

	require.NoError(t, repo.Replace(ctx, nil, models.EntityTypeTask, "t1", []string{"old"}))
	require.NoError(t, repo.Replace(ctx, nil, models.EntityTypeTask, "t1", []string{"new"}))

	tags, err := repo.ListForEntity(ctx, models.EntityTypeTask, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, tags)
}

func TestTagRepository_HasAnyTag(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestDB(t))
	require.NoError(t, repo.Replace(ctx, nil, models.EntityTypeTask, "t1", []string{"critical"}))

	has, err := repo.HasAnyTag(ctx, models.EntityTypeTask, "t1", []string{"Critical", "bug"})
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasAnyTag(ctx, models.EntityTypeTask, "t1", []string{"bug"})
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTagRepository_HasAnyTag_EmptyCandidatesIsFalse(t *testing.T) {
	ctx := context.Background()
	repo := NewTagRepository(newTestDB(t))
	has, err := repo.HasAnyTag(ctx, models.EntityTypeTask, "t1", nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBuildSearchVector_LowercasesAndJoinsTagsAndFields(t *testing.T) {
	v := BuildSearchVector([]string{"Bug", "UI"}, "Fix Login", "Broken SSO flow")
	assert.Equal(t, "fix login broken sso flow bug ui", v)
}

func TestBuildSearchVector_SkipsEmptyFields(t *testing.T) {
	v := BuildSearchVector(nil, "Title", "", "Summary")
	assert.Equal(t, "title summary", v)
}
