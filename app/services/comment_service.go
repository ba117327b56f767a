package services

import (
	"context"
	"log/slog"

	"blogapi/app/models"
	"blogapi/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	logger      *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, logger *slog.Logger) *CommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		logger:      logger,
	}
}

// CreateComment attaches a comment to parent, which the caller has already
// loaded.
func (s *CommentService) CreateComment(ctx context.Context, parent *models.Post, input models.CreateCommentInput, authorID string) (*models.Comment, error) {
	comment, err := s.commentRepo.Create(ctx, parent.ID, input, authorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment created", "comment_id", comment.ID, "post_id", parent.ID, "author_id", authorID)
	return comment, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

// ListPostComments retrieves all comments for a post, oldest first. The post
// must exist.
func (s *CommentService) ListPostComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) DeleteComment(ctx context.Context, id string) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comment deleted", "comment_id", id)
	return nil
}
