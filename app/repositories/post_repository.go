package repositories

import (
	"context"
	"fmt"
	"time"

	"board/app/models"

	"github.com/dgraph-io/badger/v4"
)

var _ PostRepository = (*BadgerPostRepository)(nil)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create creates a new post
func (r *BadgerPostRepository) Create(_ context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		// Get next ID
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.Stamp(time.Now())

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(postKey(post.ID), data)
	})
}

// FindByID retrieves a post by ID without its comments
func (r *BadgerPostRepository) FindByID(_ context.Context, id int64) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, id)
		if err != nil {
			return err
		}
		counts, err := countComments(txn)
		if err != nil {
			return err
		}
		post.CommentCount = counts[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// FindByIDWithComments retrieves a post and its comments in one read transaction
func (r *BadgerPostRepository) FindByIDWithComments(_ context.Context, id int64) (*models.Post, error) {
	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = loadPost(txn, id)
		if err != nil {
			return err
		}
		comments, err := loadComments(txn, commentPrefix(id), nil)
		if err != nil {
			return err
		}
		SortComments(comments)
		post.Comments = comments
		post.CommentCount = int64(len(comments))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ExistsByID reports whether a post with the given ID is stored
func (r *BadgerPostRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		exists, err = keyExists(txn, postKey(id))
		return err
	})
	return exists, err
}

// FindAll retrieves one page of posts
func (r *BadgerPostRepository) FindAll(_ context.Context, req PageRequest) (Page[models.Post], error) {
	return r.findPage(req, nil)
}

// FindByAuthor retrieves one page of posts written by author
func (r *BadgerPostRepository) FindByAuthor(_ context.Context, author string, req PageRequest) (Page[models.Post], error) {
	return r.findPage(req, func(p *models.Post) bool { return p.Author == author })
}

// SearchByKeyword retrieves one page of posts whose title or body contains keyword
func (r *BadgerPostRepository) SearchByKeyword(_ context.Context, keyword string, req PageRequest) (Page[models.Post], error) {
	return r.findPage(req, func(p *models.Post) bool { return MatchesKeyword(p, keyword) })
}

func (r *BadgerPostRepository) findPage(req PageRequest, match func(*models.Post) bool) (Page[models.Post], error) {
	var posts []models.Post
	var counts map[int64]int64

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			if match == nil || match(&post) {
				posts = append(posts, post)
			}
		}

		var err error
		counts, err = countComments(txn)
		return err
	})
	if err != nil {
		return Page[models.Post]{}, err
	}

	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return PagePosts(posts, req), nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(_ context.Context, post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(post.ID)

		// Verify post exists
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a post by ID along with its comments
func (r *BadgerPostRepository) Delete(_ context.Context, id int64) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)

		// Verify post exists
		exists, err := keyExists(txn, key)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		var commentKeys [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		prefix := commentPrefix(id)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			commentKeys = append(commentKeys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, k := range commentKeys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}

func loadPost(txn *badger.Txn, id int64) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

// countComments counts comments per post id using keys only.
func countComments(txn *badger.Txn) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	prefix := []byte(CommentKeyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		postID, _, err := parseCommentKey(it.Item().Key())
		if err != nil {
			return nil, fmt.Errorf("malformed comment key %q: %w", it.Item().Key(), err)
		}
		counts[postID]++
	}
	return counts, nil
}
