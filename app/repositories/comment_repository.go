package repositories

import (
	"context"
	"fmt"
	"time"

	"board/app/models"

	"github.com/dgraph-io/badger/v4"
)

var _ CommentRepository = (*BadgerCommentRepository)(nil)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create creates a new comment. The owning post must already exist.
func (r *BadgerCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		postID := comment.PostRef()
		exists, err := keyExists(txn, postKey(postID))
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}

		// Get next ID
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id
		comment.PostID = postID
		comment.Stamp(time.Now())

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}

		// Save comment with post ID in key for efficient listing
		return txn.Set(commentKey(postID, comment.ID), data)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		key, err := findCommentKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var c models.Comment
		if err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &c)
		}); err != nil {
			return err
		}
		comment = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost retrieves all comments for a post, oldest first
func (r *BadgerCommentRepository) ListByPost(_ context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = loadComments(txn, commentPrefix(postID), nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	SortComments(comments)
	return comments, nil
}

// ListByAuthor retrieves all comments written by author, oldest first
func (r *BadgerCommentRepository) ListByAuthor(_ context.Context, author string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = loadComments(txn, []byte(CommentKeyPrefix), func(c *models.Comment) bool {
			return c.Author == author
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	SortComments(comments)
	return comments, nil
}

// Update updates an existing comment. The owning post never changes.
func (r *BadgerCommentRepository) Update(_ context.Context, comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := findCommentKey(txn, comment.ID)
		if err != nil {
			return err
		}
		postID, _, err := parseCommentKey(key)
		if err != nil {
			return err
		}
		comment.PostID = postID

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(_ context.Context, id int64) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key, err := findCommentKey(txn, id)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// findCommentKey locates the key of comment id by scanning keys only.
func findCommentKey(txn *badger.Txn, id int64) ([]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(CommentKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		_, cid, err := parseCommentKey(it.Item().Key())
		if err != nil {
			continue
		}
		if cid == id {
			return it.Item().KeyCopy(nil), nil
		}
	}
	return nil, ErrNotFound
}

func loadComments(txn *badger.Txn, prefix []byte, match func(*models.Comment) bool) ([]models.Comment, error) {
	comments := []models.Comment{}
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
		}
		if match == nil || match(&comment) {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}
