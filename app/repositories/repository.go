package repositories

import (
	"fmt"
	"io"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore owns an embedded BadgerDB and the repositories built on it.
type BadgerStore struct {
	db       *badger.DB
	mutex    sync.Mutex
	posts    *BadgerPostRepository
	comments *BadgerCommentRepository
}

// OpenBadger opens the database at path. An empty path opens an in-memory
// database. log may be nil to silence badger.
func OpenBadger(path string, log badger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(log).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{
		db:       db,
		posts:    NewBadgerPostRepository(db),
		comments: NewBadgerCommentRepository(db),
	}, nil
}

// Posts returns the post repository of the store.
func (s *BadgerStore) Posts() PostRepository {
	return s.posts
}

// Comments returns the comment repository of the store.
func (s *BadgerStore) Comments() CommentRepository {
	return s.comments
}

// Backup writes a full backup of the database to w.
func (s *BadgerStore) Backup(w io.Writer) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup into the database.
func (s *BadgerStore) Restore(r io.Reader) (err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic occurred during restore: %v", rec)
		}
	}()
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return nil
}

// Clear drops every key in the database.
func (s *BadgerStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}
