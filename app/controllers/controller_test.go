package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"blogapi/app/apierror"
	"blogapi/app/identity"
	"blogapi/app/models"
	"blogapi/app/repositories/mock"
	"blogapi/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth treats the bearer token as the subject.
type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, h identity.Headers) (string, error) {
	token := identity.BearerToken(h.Header("Authorization"))
	switch token {
	case "":
		return "", apierror.Unauthorized(apierror.MsgNoToken)
	case "bad":
		return "", apierror.Unauthorized(apierror.MsgInvalidToken)
	}
	return token, nil
}

type fixture struct {
	posts       *PostController
	comments    *CommentController
	postRepo    *mock.PostRepository
	commentRepo *mock.CommentRepository
	seedPost    *models.Post
	seedComment *models.Comment
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	postRepo := mock.NewPostRepository()
	commentRepo := mock.NewCommentRepository()
	postService := services.NewPostService(postRepo, commentRepo, logger)
	commentService := services.NewCommentService(commentRepo, postRepo, logger)

	ctx := context.Background()
	post, err := postRepo.Create(ctx, models.CreatePostInput{Title: "Seed", Content: "Body"}, "alice")
	require.NoError(t, err)
	comment, err := commentRepo.Create(ctx, post.ID, models.CreateCommentInput{Content: "Hi"}, "bob")
	require.NoError(t, err)

	return &fixture{
		posts:       NewPostController(postService, fakeAuth{}),
		comments:    NewCommentController(commentService, postService, fakeAuth{}),
		postRepo:    postRepo,
		commentRepo: commentRepo,
		seedPost:    post,
		seedComment: comment,
	}
}

func request(user string, params map[string]string, body string) *Request {
	headers := map[string]string{}
	if user != "" {
		headers["authorization"] = "Bearer " + user
	}
	return &Request{PathParams: params, Headers: headers, Body: []byte(body)}
}

func assertAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apierror.KindOf(err).Status())
	assert.Equal(t, msg, apierror.PublicMessage(err))
}

func TestPostControllerCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	resp, err := f.posts.Create(ctx, request("carol", nil, `{"title":"  Hello  ","content":"World","imageKey":"k.png"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var post models.Post
	require.NoError(t, json.Unmarshal(resp.Body, &post))
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "carol", post.AuthorID)
	require.NotNil(t, post.ImageKey)
	assert.Equal(t, "k.png", *post.ImageKey)

	_, err = f.posts.Create(ctx, request("", nil, `{"title":"x","content":"y"}`))
	assertAPIError(t, err, http.StatusForbidden, "No token provided")

	_, err = f.posts.Create(ctx, request("bad", nil, `{"title":"x","content":"y"}`))
	assertAPIError(t, err, http.StatusForbidden, "Invalid token")

	// Authentication comes before validation.
	_, err = f.posts.Create(ctx, request("", nil, `not json`))
	assertAPIError(t, err, http.StatusForbidden, "No token provided")

	_, err = f.posts.Create(ctx, request("carol", nil, `{"content":"y"}`))
	assertAPIError(t, err, http.StatusBadRequest, "Title is required")
}

func TestPostControllerRead(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	resp, err := f.posts.List(ctx, request("", nil, ""))
	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(resp.Body, &posts))
	require.Len(t, posts, 1)

	resp, err = f.posts.Show(ctx, request("", map[string]string{"id": f.seedPost.ID}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = f.posts.Show(ctx, request("", map[string]string{"id": "nope"}, ""))
	assertAPIError(t, err, http.StatusNotFound, "Post not found")
}

func TestPostControllerEmptyList(t *testing.T) {
	f := setup(t)
	f.postRepo.Clear()

	resp, err := f.posts.List(context.Background(), request("", nil, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(resp.Body))
}

func TestPostControllerUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	params := map[string]string{"id": f.seedPost.ID}

	tests := []struct {
		name   string
		user   string
		params map[string]string
		body   string
		status int
		msg    string
	}{
		{"no token", "", params, `{"title":"x"}`, http.StatusForbidden, "No token provided"},
		{"missing post before ownership", "mallory", map[string]string{"id": "nope"}, `{"title":"x"}`, http.StatusNotFound, "Post not found"},
		{"not the owner", "mallory", params, `{"title":"x"}`, http.StatusForbidden, "You do not have permission to modify this resource"},
		{"ownership before validation", "mallory", params, `garbage`, http.StatusForbidden, "You do not have permission to modify this resource"},
		{"invalid body", "alice", params, `garbage`, http.StatusBadRequest, "Invalid request body"},
		{"empty title", "alice", params, `{"title":"   "}`, http.StatusBadRequest, "Title is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.Update(ctx, request(tt.user, tt.params, tt.body))
			assertAPIError(t, err, tt.status, tt.msg)
		})
	}

	t.Run("owner updates", func(t *testing.T) {
		resp, err := f.posts.Update(ctx, request("alice", params, `{"content":"New body"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var post models.Post
		require.NoError(t, json.Unmarshal(resp.Body, &post))
		assert.Equal(t, "Seed", post.Title)
		assert.Equal(t, "New body", post.Content)
		assert.Equal(t, "alice", post.AuthorID)
	})
}

func TestPostControllerDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	params := map[string]string{"id": f.seedPost.ID}

	_, err := f.posts.Delete(ctx, request("bob", params, ""))
	assertAPIError(t, err, http.StatusForbidden, "You do not have permission to modify this resource")

	resp, err := f.posts.Delete(ctx, request("alice", params, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, resp.Body)

	_, err = f.commentRepo.GetByID(ctx, f.seedComment.ID)
	assert.Error(t, err, "comments are removed with their post")

	_, err = f.posts.Delete(ctx, request("alice", params, ""))
	assertAPIError(t, err, http.StatusNotFound, "Post not found")
}

func TestCommentController(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	params := map[string]string{"id": f.seedPost.ID}

	t.Run("list", func(t *testing.T) {
		resp, err := f.comments.List(ctx, request("", params, ""))
		require.NoError(t, err)
		var comments []models.Comment
		require.NoError(t, json.Unmarshal(resp.Body, &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, f.seedComment.ID, comments[0].ID)

		_, err = f.comments.List(ctx, request("", map[string]string{"id": "nope"}, ""))
		assertAPIError(t, err, http.StatusNotFound, "Post not found")
	})

	t.Run("create", func(t *testing.T) {
		resp, err := f.comments.Create(ctx, request("dave", params, `{"content":" nice "}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var c models.Comment
		require.NoError(t, json.Unmarshal(resp.Body, &c))
		assert.Equal(t, "nice", c.Content)
		assert.Equal(t, f.seedPost.ID, c.PostID)
		assert.Equal(t, "dave", c.AuthorID)
	})

	t.Run("create on missing post persists nothing", func(t *testing.T) {
		_, err := f.comments.Create(ctx, request("dave", map[string]string{"id": "nope"}, `{"content":"x"}`))
		assertAPIError(t, err, http.StatusNotFound, "Post not found")

		// A bad body does not mask the missing post.
		_, err = f.comments.Create(ctx, request("dave", map[string]string{"id": "nope"}, `{}`))
		assertAPIError(t, err, http.StatusNotFound, "Post not found")

		comments, err := f.commentRepo.ListByPost(ctx, "nope")
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("create without content", func(t *testing.T) {
		_, err := f.comments.Create(ctx, request("dave", params, `{"content":""}`))
		assertAPIError(t, err, http.StatusBadRequest, "Content is required")
	})

	t.Run("delete", func(t *testing.T) {
		cp := map[string]string{"commentId": f.seedComment.ID}
		_, err := f.comments.Delete(ctx, request("alice", cp, ""))
		assertAPIError(t, err, http.StatusForbidden, "You do not have permission to modify this resource")

		resp, err := f.comments.Delete(ctx, request("bob", cp, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		_, err = f.comments.Delete(ctx, request("bob", cp, ""))
		assertAPIError(t, err, http.StatusNotFound, "Comment not found")
	})
}

func TestOrphanCommentDeletable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.commentRepo.Put(models.Comment{ID: "orphan", PostID: "gone", Content: "x", AuthorID: "bob"})

	resp, err := f.comments.Delete(ctx, request("bob", map[string]string{"commentId": "orphan"}, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
