package repositories

import (
	"context"
	"fmt"
	"time"

	"board/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ CommentRepository = (*GormCommentRepository)(nil)

// GormCommentRepository implements CommentRepository for relational databases
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment for an existing post. The post itself is never
// written.
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postID := comment.PostRef()
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}

		comment.PostID = postID
		comment.Stamp(time.Now())
		return tx.Omit(clause.Associations).Create(comment).Error
	})
}

// GetByID retrieves a comment by ID
func (r *GormCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &comment, nil
}

// ListByPost retrieves the comments of a post, oldest first
func (r *GormCommentRepository) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByAuthor retrieves the comments written by author, oldest first
func (r *GormCommentRepository) ListByAuthor(ctx context.Context, author string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := r.db.WithContext(ctx).
		Where("author = ?", author).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update writes the content and update timestamp of a comment
func (r *GormCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"updated_at": comment.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a comment by ID
func (r *GormCommentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
