//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/c4gt/bounce/internal/database/dbtest"
	"github.com/c4gt/bounce/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	tdb := dbtest.SetupTestDatabase(t)
	repo := NewUserRepository(tdb.DB)
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		tdb.CleanupTables(t)

		created, err := repo.Create(ctx, &models.User{Email: "a@x.com", Name: "Ann", PasswordHash: "hash"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "a@x.com", created.Email)
		assert.Empty(t, created.Avatar)

		byEmail, err := repo.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.True(t, byEmail.HasPassword())

		assert.Equal(t, "Ann", byEmail.Name)

		exists, err := repo.ExistsByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		tdb.CleanupTables(t)

		_, err := repo.Create(ctx, &models.User{Email: "dup@x.com", Name: "One"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, &models.User{Email: "dup@x.com", Name: "Two"})
		assert.ErrorIs(t, err, models.ErrAlreadyRegistered)
	})

	t.Run("missing user", func(t *testing.T) {
		tdb.CleanupTables(t)

		_, err := repo.GetByEmail(ctx, "ghost@x.com")
		assert.ErrorIs(t, err, models.ErrNotFound)

		exists, err := repo.ExistsByEmail(ctx, "ghost@x.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("update password", func(t *testing.T) {
		tdb.CleanupTables(t)

		created, err := repo.Create(ctx, &models.User{Email: "p@x.com", Name: "Pat"})
		require.NoError(t, err)
		assert.False(t, created.HasPassword())

		require.NoError(t, repo.UpdatePassword(ctx, created.ID, "newhash"))

		fetched, err := repo.GetByEmail(ctx, "p@x.com")
		require.NoError(t, err)
		assert.Equal(t, "newhash", fetched.PasswordHash)

		err = repo.UpdatePassword(ctx, "00000000-0000-0000-0000-000000000000", "x")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestDiscussionRepository(t *testing.T) {
	tdb := dbtest.SetupTestDatabase(t)
	repo := NewDiscussionRepository(tdb.DB)
	ctx := context.Background()

	t.Run("create with no comments", func(t *testing.T) {
		tdb.CleanupTables(t)

		d, err := repo.Create(ctx, &models.Discussion{Title: "T", Content: "C", Author: "Bob"})
		require.NoError(t, err)
		assert.NotEmpty(t, d.ID)
		assert.NotNil(t, d.Comments)
		assert.Empty(t, d.Comments)

		comments, err := repo.ListComments(ctx, d.ID)
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})

	t.Run("list ordering and search", func(t *testing.T) {
		tdb.CleanupTables(t)

		first, err := repo.Create(ctx, &models.Discussion{Title: "Routing basics", Content: "How do packets move", Author: "Ann"})
		require.NoError(t, err)
		second, err := repo.Create(ctx, &models.Discussion{Title: "DNS", Content: "Resolvers and caching", Author: "Bob"})
		require.NoError(t, err)

		all, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, second.ID, all[0].ID, "newest first")
		assert.Equal(t, first.ID, all[1].ID)

		found, err := repo.List(ctx, "PACKETS")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, first.ID, found[0].ID)

		none, err := repo.List(ctx, "100%")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("comments and cascade delete", func(t *testing.T) {
		tdb.CleanupTables(t)

		d, err := repo.Create(ctx, &models.Discussion{Title: "T", Content: "C", Author: "Bob"})
		require.NoError(t, err)

		c1, err := repo.CreateComment(ctx, &models.Comment{DiscussionID: d.ID, Content: "first", Author: "Ann", AuthorEmail: "a@x.com"})
		require.NoError(t, err)
		c2, err := repo.CreateComment(ctx, &models.Comment{DiscussionID: d.ID, Content: "second", Author: "Cat"})
		require.NoError(t, err)

		comments, err := repo.ListComments(ctx, d.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, c1.ID, comments[0].ID, "oldest first")
		assert.Equal(t, "a@x.com", comments[0].AuthorEmail)
		assert.Equal(t, c2.ID, comments[1].ID)

		fetched, err := repo.GetByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Len(t, fetched.Comments, 2)

		listed, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Len(t, listed[0].Comments, 2)

		require.NoError(t, repo.Delete(ctx, d.ID))

		_, err = repo.GetByID(ctx, d.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		assert.ErrorIs(t, repo.DeleteComment(ctx, c1.ID), models.ErrNotFound, "comment should be gone with its discussion")
	})

	t.Run("comment on missing discussion", func(t *testing.T) {
		tdb.CleanupTables(t)

		_, err := repo.CreateComment(ctx, &models.Comment{DiscussionID: "missing", Content: "x", Author: "Ann"})
		assert.ErrorIs(t, err, models.ErrNotFound)

		exists, err := repo.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("delete missing", func(t *testing.T) {
		tdb.CleanupTables(t)

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), models.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteComment(ctx, "missing"), models.ErrNotFound)
	})
}

func TestLevelCommentRepository(t *testing.T) {
	tdb := dbtest.SetupTestDatabase(t)
	repo := NewLevelCommentRepository(tdb.DB)
	users := NewUserRepository(tdb.DB)
	ctx := context.Background()

	tdb.CleanupTables(t)

	user, err := users.Create(ctx, &models.User{Email: "a@x.com", Name: "Ann"})
	require.NoError(t, err)

	linked, err := repo.Create(ctx, &models.LevelComment{
		LevelID: "LEVEL_CLIENT_SERVER", Content: "nice", Author: "Ann",
		AuthorEmail: "a@x.com", UserID: &user.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, linked.UserID)
	assert.Equal(t, user.ID, *linked.UserID)

	anon, err := repo.Create(ctx, &models.LevelComment{LevelID: "LEVEL_CLIENT_SERVER", Content: "hmm", Author: "Guest"})
	require.NoError(t, err)
	assert.Nil(t, anon.UserID)

	_, err = repo.Create(ctx, &models.LevelComment{LevelID: "LEVEL_DNS", Content: "other", Author: "Bob"})
	require.NoError(t, err)

	comments, err := repo.ListByLevel(ctx, "LEVEL_CLIENT_SERVER")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, linked.ID, comments[0].ID)
	assert.Equal(t, anon.ID, comments[1].ID)

	empty, err := repo.ListByLevel(ctx, "LEVEL_UNKNOWN")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Delete(ctx, anon.ID))
	assert.ErrorIs(t, repo.Delete(ctx, anon.ID), models.ErrNotFound)
}
