package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogapi/app/models"
	"blogapi/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()

	post, err := repo.Create(ctx, models.CreatePostInput{Title: "t", Content: "c"}, "u")
	require.NoError(t, err)
	post.Title = "mutated"

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
}

func TestPostRepositoryDoesNotShareImageKey(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()

	key := "uploads/a.png"
	post, err := repo.Create(ctx, models.CreatePostInput{Title: "t", Content: "c", ImageKey: &key}, "u")
	require.NoError(t, err)
	key = "changed-by-input"
	*post.ImageKey = "changed-by-create-result"

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageKey)
	assert.Equal(t, "uploads/a.png", *got.ImageKey)
	*got.ImageKey = "changed-by-get-result"

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "uploads/a.png", *all[0].ImageKey)
	*all[0].ImageKey = "changed-by-list-result"

	again, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/a.png", *again.ImageKey)
}

func TestPostRepositoryOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewPostRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.Put(models.Post{ID: "b", CreatedAt: base})
	repo.Put(models.Post{ID: "a", CreatedAt: base})
	repo.Put(models.Post{ID: "c", CreatedAt: base.Add(time.Hour)})

	posts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	ids := []string{posts[0].ID, posts[1].ID, posts[2].ID}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	repo.Put(models.Comment{ID: "2", PostID: "p", CreatedAt: base.Add(time.Minute)})
	repo.Put(models.Comment{ID: "1", PostID: "p", CreatedAt: base})
	repo.Put(models.Comment{ID: "3", PostID: "q", CreatedAt: base})

	comments, err := repo.ListByPost(ctx, "p")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0].ID)
	assert.Equal(t, "2", comments[1].ID)

	n, err := repo.DeleteByPost(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	err = repo.Delete(ctx, "1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, "3"))
}

func TestInjectedError(t *testing.T) {
	boom := errors.New("boom")
	posts := NewPostRepository()
	posts.Err = boom
	_, err := posts.ListAll(context.Background())
	assert.ErrorIs(t, err, boom)

	comments := NewCommentRepository()
	comments.Err = boom
	_, err = comments.DeleteByPost(context.Background(), "p")
	assert.ErrorIs(t, err, boom)
}
