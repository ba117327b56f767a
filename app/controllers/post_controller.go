package controllers

import (
	"context"
	"net/http"

	"blogapi/app/identity"
	"blogapi/app/models"
	"blogapi/app/services"
)

// PostController handles requests for blog posts
type PostController struct {
	posts *services.PostService
	auth  Authenticator
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, auth Authenticator) *PostController {
	return &PostController{posts: posts, auth: auth}
}

// Create handles POST /posts.
func (pc *PostController) Create(ctx context.Context, req *Request) (*Response, error) {
	userID, err := pc.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	input, err := models.ParseCreatePost(req.Body)
	if err != nil {
		return nil, err
	}
	post, err := pc.posts.CreatePost(ctx, input, userID)
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusCreated, post)
}

// List handles GET /posts.
func (pc *PostController) List(ctx context.Context, req *Request) (*Response, error) {
	posts, err := pc.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusOK, posts)
}

// Show handles GET /posts/{id}.
func (pc *PostController) Show(ctx context.Context, req *Request) (*Response, error) {
	post, err := pc.posts.GetPost(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusOK, post)
}

// Update handles PUT /posts/{id}. A missing post is reported before a
// foreign one, and both before an invalid body.
func (pc *PostController) Update(ctx context.Context, req *Request) (*Response, error) {
	userID, err := pc.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	id := req.Param("id")
	post, err := pc.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(post.AuthorID, userID); err != nil {
		return nil, err
	}
	patch, err := models.ParseUpdatePost(req.Body)
	if err != nil {
		return nil, err
	}
	updated, err := pc.posts.UpdatePost(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusOK, updated)
}

// Delete handles DELETE /posts/{id}.
func (pc *PostController) Delete(ctx context.Context, req *Request) (*Response, error) {
	userID, err := pc.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	id := req.Param("id")
	post, err := pc.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(post.AuthorID, userID); err != nil {
		return nil, err
	}
	if err := pc.posts.DeletePost(ctx, id); err != nil {
		return nil, err
	}
	return NoContent(), nil
}
