package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// Options configures a Badger-backed store.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path          string
	InMemory      bool
	PostsTable    string
	CommentsTable string
	Clock         Clock
}

// Store owns a Badger database and hands out the repositories built on it.
type Store struct {
	db       *badger.DB
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
}

func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts = bopts.
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}
	return NewStore(db, opts), nil
}

// NewStore wraps an already opened database.
func NewStore(db *badger.DB, opts Options) *Store {
	postsTable := opts.PostsTable
	if postsTable == "" {
		postsTable = "posts"
	}
	commentsTable := opts.CommentsTable
	if commentsTable == "" {
		commentsTable = "comments"
	}
	clock := opts.Clock
	if clock == nil {
		clock = utcNow
	}
	return &Store{
		db:       db,
		Posts:    &BadgerPostRepository{db: db, table: postsTable, now: clock},
		Comments: &BadgerCommentRepository{db: db, table: commentsTable, now: clock},
	}
}

func (s *Store) DB() *badger.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup.
func (s *Store) Restore(r io.Reader) error {
	return s.db.Load(r, 256)
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}
