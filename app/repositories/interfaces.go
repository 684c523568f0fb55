package repositories

import (
	"context"
	"errors"

	"board/app/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidSort = errors.New("invalid sort")
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	FindAll(ctx context.Context, req PageRequest) (Page[models.Post], error)
	FindByAuthor(ctx context.Context, author string, req PageRequest) (Page[models.Post], error)
	// SearchByKeyword matches the keyword as a case-insensitive substring of
	// the title or the body.
	SearchByKeyword(ctx context.Context, keyword string, req PageRequest) (Page[models.Post], error)
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	// FindByIDWithComments loads the post and all of its comments in one unit of work.
	FindByIDWithComments(ctx context.Context, id int64) (*models.Post, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post together with its comments.
	Delete(ctx context.Context, id int64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]models.Comment, error)
	ListByAuthor(ctx context.Context, author string) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id int64) error
}
