package models_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/rpupo63/wholspace-backend/models"
)

func TestNormalizeAndValidateHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		normalized string
		valid      bool
	}{
		{input: "ada", normalized: "ada", valid: true},
		{input: " @Ada_Dev ", normalized: "ada_dev", valid: true},
		{input: "builder42", normalized: "builder42", valid: true},
		{input: "ab", normalized: "ab", valid: false},
		{input: "dash-name", normalized: "dash-name", valid: false},
		{input: "this_handle_is_far_too_long_to_use", normalized: "this_handle_is_far_too_long_to_use", valid: false},
		{input: "", normalized: "", valid: false},
	}

	for _, tt := range tests {
		normalized := models.NormalizeHandle(tt.input)
		assert.Equal(t, tt.normalized, normalized, "input %q", tt.input)
		assert.Equal(t, tt.valid, models.ValidHandle(normalized), "input %q", tt.input)
	}
}

func TestCursorPrecedes(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cursor := models.ProjectCursor{CreatedAt: at, ID: "m"}

	assert.True(t, cursor.Precedes(&models.Project{ID: "z", CreatedAt: at.Add(-time.Second)}))
	assert.True(t, cursor.Precedes(&models.Project{ID: "a", CreatedAt: at}))
	assert.False(t, cursor.Precedes(&models.Project{ID: "m", CreatedAt: at}))
	assert.False(t, cursor.Precedes(&models.Project{ID: "z", CreatedAt: at}))
	assert.False(t, cursor.Precedes(&models.Project{ID: "a", CreatedAt: at.Add(time.Second)}))
}

func TestUserPatch(t *testing.T) {
	t.Parallel()

	assert.True(t, models.UserPatch{}.IsEmpty())

	bio := "hello"
	tools := []string{"Bolt"}
	patch := models.UserPatch{Bio: &bio, Tools: &tools, SocialLinks: &models.SocialLinks{GitHub: "gh"}}
	assert.False(t, patch.IsEmpty())

	cols := patch.Columns()
	assert.Len(t, cols, 3)
	assert.Equal(t, "hello", cols["bio"])

	user := &models.User{UID: "a", DisplayName: "Ann", ProjectCount: 3}
	patch.Apply(user)
	assert.Equal(t, "hello", user.Bio)
	assert.Equal(t, "Ann", user.DisplayName)
	assert.Equal(t, []string{"Bolt"}, []string(user.Tools))
	assert.Equal(t, "gh", user.SocialLinks.Data().GitHub)
	assert.Equal(t, int64(3), user.ProjectCount)

	tools[0] = "changed"
	assert.Equal(t, "Bolt", user.Tools[0])
}

func TestProjectPatch(t *testing.T) {
	t.Parallel()

	assert.True(t, models.ProjectPatch{}.IsEmpty())

	title := "New"
	published := false
	patch := models.ProjectPatch{Title: &title, IsPublished: &published}
	assert.Equal(t, map[string]any{"title": "New", "is_published": false}, patch.Columns())

	project := &models.Project{Title: "Old", IsPublished: true, Likes: 4}
	patch.Apply(project)
	assert.Equal(t, "New", project.Title)
	assert.False(t, project.IsPublished)
	assert.Equal(t, int64(4), project.Likes)
}

func TestCounters(t *testing.T) {
	t.Parallel()

	assert.True(t, models.Counters{}.IsZero())

	base := models.Counters{ProjectCount: 3, FollowerCount: 2, FollowingCount: 1, TotalLikes: 10}
	got := base.Add(models.Counters{ProjectCount: -1, TotalLikes: -5})
	assert.Equal(t, models.Counters{ProjectCount: 2, FollowerCount: 2, FollowingCount: 1, TotalLikes: 5}, got)

	user := &models.User{ProjectCount: 2, FollowerCount: 2, FollowingCount: 1, TotalLikes: 5}
	assert.Equal(t, got, user.Counters())

	assert.True(t, models.CounterReconciliation{Before: base, After: got}.Drifted())
	assert.False(t, models.CounterReconciliation{Before: got, After: got}.Drifted())
}

func TestMediaKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "avatars/u1/avatar.png", models.AvatarKey("u1", "png"))
	assert.Equal(t, "projects/u1/p1/", models.ProjectMediaPrefix("u1", "p1"))
	assert.Equal(t, "projects/u1/p1/thumbnail.jpg", models.ProjectImageKey("u1", "p1", 0, "jpg"))
	assert.Equal(t, "projects/u1/p1/screenshot_3.webp", models.ProjectImageKey("u1", "p1", 3, "webp"))
	assert.Equal(t, "alice_bob", models.FollowID("alice", "bob"))
}

func TestIsLikedBy(t *testing.T) {
	t.Parallel()

	project := &models.Project{LikedBy: []string{"a", "b"}}
	assert.True(t, project.IsLikedBy("a"))
	assert.False(t, project.IsLikedBy("c"))
	assert.False(t, project.IsLikedBy(""))

	var missing *models.Project
	assert.False(t, missing.IsLikedBy("a"))
}

func TestCreatedAtIsAssignedByDatabase(t *testing.T) {
	t.Parallel()

	for _, model := range []any{&models.Project{}, &models.Follow{}} {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)

		field := s.LookUpField("created_at")
		require.NotNil(t, field, s.Name)
		assert.True(t, field.HasDefaultValue, s.Name)
		assert.Equal(t, "now()", field.DefaultValue, s.Name)
		assert.Zero(t, field.AutoCreateTime, s.Name)
	}
}
