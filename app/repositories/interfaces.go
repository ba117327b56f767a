package repositories

import (
	"context"

	"blogapi/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// ListAll returns every post, newest first.
	ListAll(ctx context.Context) ([]*models.Post, error)
	// Update applies the present fields of patch and refreshes UpdatedAt.
	Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, postID string, input models.CreateCommentInput, authorID string) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	// ListByPost returns the comments of a post, oldest first. It does not
	// check that the post exists.
	ListByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
	// DeleteByPost removes every comment of a post and returns how many went.
	DeleteByPost(ctx context.Context, postID string) (int, error)
}
