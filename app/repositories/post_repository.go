package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db    *badger.DB
	table string
	now   Clock
}

func (r *BadgerPostRepository) key(id string) []byte {
	return []byte(r.table + ":" + id)
}

func (r *BadgerPostRepository) prefix() []byte {
	return []byte(r.table + ":")
}

// Create stores a new post with a generated ID.
func (r *BadgerPostRepository) Create(ctx context.Context, input models.CreatePostInput, authorID string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	post := models.NewPost(newID(), input, authorID, r.now())
	data, err := marshalEntity(post)
	if err != nil {
		return nil, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(post.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = r.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *BadgerPostRepository) get(txn *badger.Txn, id string) (*models.Post, error) {
	item, err := txn.Get(r.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, PostNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListAll scans every post and orders them newest first.
func (r *BadgerPostRepository) ListAll(ctx context.Context) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := r.prefix()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	SortNewestFirst(posts)
	return posts, nil
}

// Update reads the post, applies the patch and writes it back in one transaction.
func (r *BadgerPostRepository) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var post *models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		post, err = r.get(txn, id)
		if err != nil {
			return err
		}
		post.Apply(patch, r.now())
		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(r.key(id), data)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := r.key(id)
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return PostNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return txn.Delete(key)
	})
}
