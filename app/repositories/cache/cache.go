// Package cache keeps posts in Redis in front of another PostRepository.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogapi/app/models"
	"blogapi/app/repositories"

	"github.com/go-redis/redis/v8"
)

// PostRepository serves GetByID from Redis and falls back to the wrapped
// repository on a miss. Cache failures are logged and otherwise ignored.
type PostRepository struct {
	next   repositories.PostRepository
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewPostRepository wraps next. Keys are "<prefix>:<id>".
func NewPostRepository(next repositories.PostRepository, client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *PostRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostRepository{next: next, client: client, ttl: ttl, prefix: prefix, logger: logger}
}

// NewClient builds a client from a redis:// URL or a bare host:port.
func NewClient(url string) (*redis.Client, error) {
	if !strings.Contains(url, "://") {
		return redis.NewClient(&redis.Options{Addr: url}), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func (r *PostRepository) key(id string) string {
	return r.prefix + ":" + id
}

func (r *PostRepository) save(ctx context.Context, post *models.Post) {
	j, err := json.Marshal(post)
	if err != nil {
		r.logger.Warn("failed to encode post for cache", "id", post.ID, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.key(post.ID), j, r.ttl).Err(); err != nil {
		r.logger.Warn("failed to save post to redis", "id", post.ID, "error", err)
	}
}

func (r *PostRepository) load(ctx context.Context, id string) (*models.Post, bool) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("failed to get post from redis", "id", id, "error", err)
		return nil, false
	}
	var p models.Post
	if err := json.Unmarshal(val, &p); err != nil {
		r.logger.Warn("discarding undecodable cached post", "id", id, "error", err)
		return nil, false
	}
	return &p, true
}

func (r *PostRepository) remove(ctx context.Context, id string) {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.logger.Warn("failed to remove post from redis", "id", id, "error", err)
	}
}

func (r *PostRepository) Create(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error) {
	post, err := r.next.Create(ctx, input, authorID)
	if err == nil {
		r.save(ctx, post)
	}
	return post, err
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if p, ok := r.load(ctx, id); ok {
		return p, nil
	}
	post, err := r.next.GetByID(ctx, id)
	if err == nil {
		r.save(ctx, post)
	}
	return post, err
}

func (r *PostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	return r.next.ListAll(ctx)
}

func (r *PostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	post, err := r.next.Update(ctx, id, patch)
	r.remove(ctx, id)
	return post, err
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	r.remove(ctx, id)
	return err
}

var _ repositories.PostRepository = (*PostRepository)(nil)
