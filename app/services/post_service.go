package services

import (
	"context"
	"fmt"
	"log/slog"

	"blogapi/app/models"
	"blogapi/app/repositories"
)

// PostService handles business logic for blog posts
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	logger      *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		logger:      logger,
	}
}

// CreatePost stores a validated post authored by authorID.
func (s *PostService) CreatePost(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error) {
	post, err := s.postRepo.Create(ctx, input, authorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("post created", "post_id", post.ID, "author_id", authorID)
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.ListAll(ctx)
}

func (s *PostService) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	post, err := s.postRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("post updated", "post_id", id)
	return post, nil
}

// DeletePost deletes a post and all its comments. Comments go first so that
// a failure leaves the post in place and the delete can be retried.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	n, err := s.commentRepo.DeleteByPost(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", id, "comments_deleted", n)
	return nil
}
