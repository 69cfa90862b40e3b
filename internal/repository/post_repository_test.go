package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/birdnest/internal/model"
)

// testPostRepositoryContract 所有后端共享的行为约束
func testPostRepositoryContract(t *testing.T, repo PostRepository) {
	t.Helper()
	ctx := context.Background()

	p1 := &model.Post{ID: 1609459200, Date: "2021-01-01", Title: "First", Content: "# one"}
	p2 := &model.Post{ID: 1622505600, Date: "2021-06-01", Title: "Second", Content: "**two**"}

	t.Run("get missing", func(t *testing.T) {
		_, err := repo.Get(ctx, 42)
		assert.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("list empty", func(t *testing.T) {
		posts, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, repo.Put(ctx, p1))
		require.NoError(t, repo.Put(ctx, p2))

		got, err := repo.Get(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, p1, got)
		assert.Empty(t, got.Edit)
	})

	t.Run("list", func(t *testing.T) {
		posts, err := repo.List(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []*model.Post{p1, p2}, posts)
	})

	t.Run("put overwrites", func(t *testing.T) {
		replaced := &model.Post{ID: p2.ID, Date: p2.Date, Title: "Second again", Content: "two"}
		require.NoError(t, repo.Put(ctx, replaced))

		got, err := repo.Get(ctx, p2.ID)
		require.NoError(t, err)
		assert.Equal(t, replaced, got)
	})

	t.Run("update existing", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, p1.ID, "2021-02-02", "First, edited", "# uno"))

		got, err := repo.Get(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, p1.ID, got.ID)
		assert.Equal(t, p1.Date, got.Date)
		assert.Equal(t, "2021-02-02", got.Edit)
		assert.Equal(t, "First, edited", got.Title)
		assert.Equal(t, "# uno", got.Content)
	})

	t.Run("update missing does not create", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, 7, "2021-02-02", "ghost", "boo"))

		_, err := repo.Get(ctx, 7)
		assert.ErrorIs(t, err, ErrPostNotFound)

		posts, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, p1.ID))
		require.NoError(t, repo.Delete(ctx, p1.ID))

		_, err := repo.Get(ctx, p1.ID)
		assert.ErrorIs(t, err, ErrPostNotFound)

		posts, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})
}
