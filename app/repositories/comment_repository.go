package repositories

import (
	"context"
	"errors"
	"fmt"

	"blogapi/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
//
// Besides the records under "<table>:<id>" it keeps an index
// "<table>-by-post:<postId>:<createdAt nanos>:<id>" so that a post's
// comments are read in creation order by a single prefix scan.
type BadgerCommentRepository struct {
	db    *badger.DB
	table string
	now   Clock
}

func (r *BadgerCommentRepository) key(id string) []byte {
	return []byte(r.table + ":" + id)
}

func (r *BadgerCommentRepository) indexPrefix(postID string) []byte {
	return []byte(r.table + "-by-post:" + postID + ":")
}

func (r *BadgerCommentRepository) indexKey(c *models.Comment) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", r.indexPrefix(c.PostID), c.CreatedAt.UnixNano(), c.ID))
}

// Create stores a comment and its index entry.
func (r *BadgerCommentRepository) Create(ctx context.Context, postID string, input models.CreateCommentInput, authorID string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comment := models.NewComment(newID(), postID, input, authorID, r.now())
	data, err := marshalEntity(comment)
	if err != nil {
		return nil, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(r.key(comment.ID), data); err != nil {
			return err
		}
		return txn.Set(r.indexKey(comment), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comment, err = r.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *BadgerCommentRepository) get(txn *badger.Txn, id string) (*models.Comment, error) {
	item, err := txn.Get(r.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, CommentNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	var comment models.Comment
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &comment)
	}); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost walks the by-post index, which is already in creation order.
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		for _, e := range r.indexEntries(txn, postID) {
			c, err := r.get(txn, e.id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			comments = append(comments, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	SortOldestFirst(comments)
	return comments, nil
}

type indexEntry struct {
	key []byte
	id  string
}

func (r *BadgerCommentRepository) indexEntries(txn *badger.Txn, postID string) []indexEntry {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := r.indexPrefix(postID)
	var entries []indexEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		// The remaining key is "<nanos>:<id>"; the nanos field is fixed width.
		rest := string(key[len(prefix):])
		if len(rest) < 21 {
			continue
		}
		entries = append(entries, indexEntry{key: key, id: rest[21:]})
	}
	return entries
}

// Delete removes a comment and its index entry.
func (r *BadgerCommentRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		c, err := r.get(txn, id)
		if err != nil {
			return err
		}
		return r.remove(txn, c)
	})
}

func (r *BadgerCommentRepository) remove(txn *badger.Txn, c *models.Comment) error {
	if err := txn.Delete(r.key(c.ID)); err != nil {
		return err
	}
	return txn.Delete(r.indexKey(c))
}

// DeleteByPost removes every comment of a post in one transaction.
func (r *BadgerCommentRepository) DeleteByPost(ctx context.Context, postID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := r.db.Update(func(txn *badger.Txn) error {
		for _, e := range r.indexEntries(txn, postID) {
			c, err := r.get(txn, e.id)
			if errors.Is(err, ErrNotFound) {
				// Stale index entry.
				if err := txn.Delete(e.key); err != nil {
					return err
				}
				continue
			}
			if err != nil {
				return err
			}
			if err := r.remove(txn, c); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete comments of post %q: %w", postID, err)
	}
	return n, nil
}
