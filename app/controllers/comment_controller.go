package controllers

import (
	"context"
	"net/http"

	"blogapi/app/identity"
	"blogapi/app/models"
	"blogapi/app/services"
)

// CommentController handles requests for comments
type CommentController struct {
	comments *services.CommentService
	posts    *services.PostService
	auth     Authenticator
}

// NewCommentController creates a new CommentController
func NewCommentController(comments *services.CommentService, posts *services.PostService, auth Authenticator) *CommentController {
	return &CommentController{comments: comments, posts: posts, auth: auth}
}

// List handles GET /posts/{id}/comments.
func (cc *CommentController) List(ctx context.Context, req *Request) (*Response, error) {
	comments, err := cc.comments.ListPostComments(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusOK, comments)
}

// Create handles POST /posts/{id}/comments. The parent is loaded before the
// body is looked at, so a missing post wins over a bad body.
func (cc *CommentController) Create(ctx context.Context, req *Request) (*Response, error) {
	userID, err := cc.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	post, err := cc.posts.GetPost(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	input, err := models.ParseCreateComment(req.Body)
	if err != nil {
		return nil, err
	}
	comment, err := cc.comments.CreateComment(ctx, post, input, userID)
	if err != nil {
		return nil, err
	}
	return JSON(http.StatusCreated, comment)
}

// Delete handles DELETE /comments/{commentId}.
func (cc *CommentController) Delete(ctx context.Context, req *Request) (*Response, error) {
	userID, err := cc.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	id := req.Param("commentId")
	comment, err := cc.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.RequireOwner(comment.AuthorID, userID); err != nil {
		return nil, err
	}
	if err := cc.comments.DeleteComment(ctx, id); err != nil {
		return nil, err
	}
	return NoContent(), nil
}
