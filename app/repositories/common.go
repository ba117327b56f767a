package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"blogapi/app/apierror"
	"blogapi/app/models"

	"github.com/google/uuid"
)

// ErrNotFound is wrapped by every not-found error a repository returns.
var ErrNotFound = errors.New("record not found")

// PostNotFound is the error for a missing post.
func PostNotFound(id string) error {
	return apierror.NotFound("Post").WithCause(fmt.Errorf("post %q: %w", id, ErrNotFound))
}

// CommentNotFound is the error for a missing comment.
func CommentNotFound(id string) error {
	return apierror.NotFound("Comment").WithCause(fmt.Errorf("comment %q: %w", id, ErrNotFound))
}

// Clock returns the current time. Stores default to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func newID() string { return uuid.NewString() }

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// SortNewestFirst orders posts by CreatedAt descending, ties by ID.
func SortNewestFirst(posts []*models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortOldestFirst orders comments by CreatedAt ascending, ties by ID.
func SortOldestFirst(comments []*models.Comment) {
	sort.Slice(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
