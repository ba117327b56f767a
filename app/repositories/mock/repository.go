// Package mock provides in-memory repositories with the same semantics as the
// persistent stores. They back tests and BLOG_STORAGE=memory.
package mock

import (
	"context"
	"sync"
	"time"

	"blogapi/app/models"
	"blogapi/app/repositories"

	"github.com/google/uuid"
)

type PostRepository struct {
	posts map[string]models.Post
	mutex sync.RWMutex

	// Now stamps created and updated posts. Defaults to UTC wall time.
	Now repositories.Clock
	// Err, when set, is returned by every call.
	Err error
}

type CommentRepository struct {
	comments map[string]models.Comment
	mutex    sync.RWMutex

	Now repositories.Clock
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]models.Post)}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{comments: make(map[string]models.Comment)}
}

func now(c repositories.Clock) time.Time {
	if c != nil {
		return c()
	}
	return time.Now().UTC()
}

// clonePost copies p so callers never share its ImageKey with the map.
func clonePost(p models.Post) *models.Post {
	if p.ImageKey != nil {
		key := *p.ImageKey
		p.ImageKey = &key
	}
	return &p
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[string]models.Post)
}

func (m *PostRepository) check(ctx context.Context) error {
	if m.Err != nil {
		return m.Err
	}
	return ctx.Err()
}

// PostRepository implementation
func (m *PostRepository) Create(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post := models.NewPost(uuid.NewString(), input, authorID, now(m.Now))
	m.posts[post.ID] = *clonePost(*post)
	return clonePost(*post), nil
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.PostNotFound(id)
	}
	return clonePost(post), nil
}

func (m *PostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	posts := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		posts = append(posts, clonePost(p))
	}
	repositories.SortNewestFirst(posts)
	return posts, nil
}

func (m *PostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.PostNotFound(id)
	}
	post.Apply(patch, now(m.Now))
	m.posts[id] = *clonePost(post)
	return clonePost(post), nil
}

func (m *PostRepository) Delete(ctx context.Context, id string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.posts[id]; !exists {
		return repositories.PostNotFound(id)
	}
	delete(m.posts, id)
	return nil
}

// Put stores a post as given, bypassing ID and timestamp generation.
func (m *PostRepository) Put(post models.Post) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts[post.ID] = *clonePost(post)
}

func (m *CommentRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments = make(map[string]models.Comment)
}

func (m *CommentRepository) check(ctx context.Context) error {
	if m.Err != nil {
		return m.Err
	}
	return ctx.Err()
}

// CommentRepository implementation
func (m *CommentRepository) Create(ctx context.Context, postID string, input models.CreateCommentInput, authorID string) (*models.Comment, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	comment := models.NewComment(uuid.NewString(), postID, input, authorID, now(m.Now))
	m.comments[comment.ID] = *comment
	return comment, nil
}

func (m *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.CommentNotFound(id)
	}
	return &comment, nil
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if err := m.check(ctx); err != nil {
		return nil, err
	}
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			comment := c
			comments = append(comments, &comment)
		}
	}
	repositories.SortOldestFirst(comments)
	return comments, nil
}

func (m *CommentRepository) Delete(ctx context.Context, id string) error {
	if err := m.check(ctx); err != nil {
		return err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.comments[id]; !exists {
		return repositories.CommentNotFound(id)
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) DeleteByPost(ctx context.Context, postID string) (int, error) {
	if err := m.check(ctx); err != nil {
		return 0, err
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()

	n := 0
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// Put stores a comment as given.
func (m *CommentRepository) Put(comment models.Comment) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.comments[comment.ID] = comment
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)
