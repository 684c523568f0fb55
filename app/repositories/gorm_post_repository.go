package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"board/app/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ PostRepository = (*GormPostRepository)(nil)

const commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GormPostRepository implements PostRepository for relational databases
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a new post
func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.Stamp(time.Now())
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

// FindByID retrieves a post by ID without its comments
func (r *GormPostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, " + commentCountColumn).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &post, nil
}

// FindByIDWithComments loads the post and its comments inside one transaction
func (r *GormPostRepository) FindByIDWithComments(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).First(&post, id).Error
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	post.CommentCount = int64(len(post.Comments))
	return &post, nil
}

// ExistsByID reports whether a post with the given ID is stored
func (r *GormPostRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindAll retrieves one page of posts
func (r *GormPostRepository) FindAll(ctx context.Context, req PageRequest) (Page[models.Post], error) {
	return r.findPage(ctx, req, nil)
}

// FindByAuthor retrieves one page of posts written by author
func (r *GormPostRepository) FindByAuthor(ctx context.Context, author string, req PageRequest) (Page[models.Post], error) {
	return r.findPage(ctx, req, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author = ?", author)
	})
}

// SearchByKeyword retrieves one page of posts whose title or body contains
// keyword, ignoring case. LIKE wildcards in keyword match literally.
func (r *GormPostRepository) SearchByKeyword(ctx context.Context, keyword string, req PageRequest) (Page[models.Post], error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(keyword)) + "%"
	return r.findPage(ctx, req, func(db *gorm.DB) *gorm.DB {
		return db.Where(`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.body) LIKE ? ESCAPE '\'`, pattern, pattern)
	})
}

func (r *GormPostRepository) findPage(ctx context.Context, req PageRequest, scope func(*gorm.DB) *gorm.DB) (Page[models.Post], error) {
	if scope == nil {
		scope = func(db *gorm.DB) *gorm.DB { return db }
	}

	var total int64
	posts := []models.Post{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Scopes(scope).Count(&total).Error; err != nil {
			return err
		}

		q := tx.Model(&models.Post{}).Scopes(scope).Select("posts.*, " + commentCountColumn)
		for _, o := range req.Orders() {
			q = q.Order(clause.OrderByColumn{
				Column: clause.Column{Table: "posts", Name: o.Column()},
				Desc:   o.Desc,
			})
		}
		return q.Offset(req.Offset()).Limit(req.Size).Find(&posts).Error
	})
	if err != nil {
		return Page[models.Post]{}, err
	}
	return NewPage(posts, total, req), nil
}

// Update writes the editable fields and the update timestamp of post
func (r *GormPostRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":      post.Title,
			"body":       post.Body,
			"updated_at": post.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a post together with its comments
func (r *GormPostRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
