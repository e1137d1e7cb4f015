package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

func TestCreateProjectDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "alice")

	project := f.project(t, "alice", "Todo app")
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "alice", project.UserID)
	assert.Equal(t, models.DefaultCategory, project.Category)
	assert.True(t, project.IsPublished)
	assert.False(t, project.IsFeatured)
	assert.Zero(t, project.Likes)
	assert.Zero(t, project.Views)
	assert.Empty(t, project.LikedBy)
	assert.NotNil(t, project.Screenshots)

	draft, err := f.svc.CreateProject(ctx, "alice", models.ProjectInput{
		Title:       "Draft",
		Category:    "Games",
		IsPublished: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Games", draft.Category)
	assert.False(t, draft.IsPublished)

	assert.Equal(t, int64(2), f.reload(t, "alice").ProjectCount)
}

func TestCreateProjectRequiresOwnerProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProject(ctx, "ghost", models.ProjectInput{Title: "Orphan"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	total, err := f.svc.GetPlatformStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, total.TotalProjects)
}

func TestLikeProjectIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	f.user(t, "fan")
	project := f.project(t, "owner", "Landing page")

	require.NoError(t, f.svc.LikeProject(ctx, project.ID, "fan"))
	require.NoError(t, f.svc.LikeProject(ctx, project.ID, "fan"))

	liked, err := f.svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.Likes)
	assert.Equal(t, []string{"fan"}, []string(liked.LikedBy))
	assert.Equal(t, int64(1), f.reload(t, "owner").TotalLikes)

	require.NoError(t, f.svc.UnlikeProject(ctx, project.ID, "fan"))
	require.NoError(t, f.svc.UnlikeProject(ctx, project.ID, "fan"))

	unliked, err := f.svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, unliked.Likes)
	assert.Empty(t, unliked.LikedBy)
	assert.Zero(t, f.reload(t, "owner").TotalLikes)
}

func TestLikeMissingProject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "fan")

	err := f.svc.LikeProject(ctx, "missing", "fan")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	err = f.svc.UnlikeProject(ctx, "missing", "fan")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestLikeRequiresLikerProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	project := f.project(t, "owner", "Landing page")

	err := f.svc.LikeProject(ctx, project.ID, "no-profile")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	unchanged, err := f.svc.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Zero(t, unchanged.Likes)
	assert.Empty(t, unchanged.LikedBy)
	assert.Zero(t, f.reload(t, "owner").TotalLikes)
}

func TestDeleteProjectUpdatesOwnerCounters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	popular := f.project(t, "owner", "Popular")
	f.project(t, "owner", "Second")
	other := f.project(t, "owner", "Third")

	for i := range 5 {
		fan := fmt.Sprintf("fan%d", i)
		f.user(t, fan)
		require.NoError(t, f.svc.LikeProject(ctx, popular.ID, fan))
	}
	f.user(t, "critic")
	require.NoError(t, f.svc.LikeProject(ctx, other.ID, "critic"))

	before := f.reload(t, "owner")
	require.Equal(t, int64(3), before.ProjectCount)
	require.Equal(t, int64(6), before.TotalLikes)

	require.NoError(t, f.svc.DeleteProject(ctx, popular.ID, "owner"))

	after := f.reload(t, "owner")
	assert.Equal(t, int64(2), after.ProjectCount)
	assert.Equal(t, int64(1), after.TotalLikes)

	_, err := f.svc.GetProject(ctx, popular.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteProjectRejectsNonOwners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		projectID func(*models.Project) string
		requester string
	}{
		{name: "other user", projectID: func(p *models.Project) string { return p.ID }, requester: "intruder"},
		{name: "missing project", projectID: func(*models.Project) string { return "missing" }, requester: "owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()
			f.user(t, "owner")
			f.user(t, "intruder")
			project := f.project(t, "owner", "Mine")

			err := f.svc.DeleteProject(ctx, tt.projectID(project), tt.requester)
			require.Error(t, err)
			assert.True(t, errs.IsUnauthorized(err))

			_, err = f.svc.GetProject(ctx, project.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), f.reload(t, "owner").ProjectCount)
		})
	}
}

func TestDeleteProjectRemovesMedia(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	project := f.project(t, "owner", "Gallery")
	keep := f.project(t, "owner", "Keep")

	_, err := f.svc.UploadProjectImage(ctx, "owner", project.ID, 0, image("image/png", 16))
	require.NoError(t, err)
	_, err = f.svc.UploadProjectImage(ctx, "owner", project.ID, 1, image("image/png", 16))
	require.NoError(t, err)
	_, err = f.svc.UploadProjectImage(ctx, "owner", keep.ID, 0, image("image/png", 16))
	require.NoError(t, err)
	require.Len(t, f.blob.Keys(), 3)

	require.NoError(t, f.svc.DeleteProject(ctx, project.ID, "owner"))

	assert.Equal(t, []string{models.ProjectImageKey("owner", keep.ID, 0, "png")}, f.blob.Keys())
	due, err := f.store.MediaCleanups().ListDue(ctx, f.clock.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	f.user(t, "intruder")
	project := f.project(t, "owner", "Before")

	_, err := f.svc.UpdateProject(ctx, project.ID, "intruder", models.ProjectPatch{Title: ptr("Hacked")})
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))

	updated, err := f.svc.UpdateProject(ctx, project.ID, "owner", models.ProjectPatch{
		Title:      ptr("After"),
		Category:   ptr(" "),
		Tags:       &[]string{"ai", "web"},
		IsFeatured: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, models.DefaultCategory, updated.Category)
	assert.Equal(t, []string{"ai", "web"}, []string(updated.Tags))
	assert.False(t, updated.IsFeatured)
}

func TestRecordProjectView(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "owner")
	project := f.project(t, "owner", "Viewed")

	_, err := f.svc.RecordProjectView(ctx, project.ID)
	require.NoError(t, err)
	viewed, err := f.svc.RecordProjectView(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewed.Views)

	_, err = f.svc.RecordProjectView(ctx, "missing")
	assert.True(t, errs.IsNotFound(err))
}
