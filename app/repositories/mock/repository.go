package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"board/app/models"
	"board/app/repositories"
)

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
)

// store is the shared in-memory state behind the mock repositories.
type store struct {
	mutex         sync.RWMutex
	posts         map[int64]models.Post
	comments      map[int64]models.Comment
	nextPostID    int64
	nextCommentID int64
	// Err, when set, is returned by every operation.
	Err error
}

type PostRepository struct {
	*store
}

type CommentRepository struct {
	*store
}

// NewRepositories returns post and comment repositories sharing one store, so
// that deleting a post removes its comments.
func NewRepositories() (*PostRepository, *CommentRepository) {
	s := &store{
		posts:         make(map[int64]models.Post),
		comments:      make(map[int64]models.Comment),
		nextPostID:    1,
		nextCommentID: 1,
	}
	return &PostRepository{s}, &CommentRepository{s}
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (s *store) Fail(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.Err = err
}

func (s *store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.posts = make(map[int64]models.Post)
	s.comments = make(map[int64]models.Comment)
	s.nextPostID = 1
	s.nextCommentID = 1
}

func (s *store) commentCount(postID int64) int64 {
	var n int64
	for _, c := range s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

// PostRepository implementation
func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post.ID = m.nextPostID
	m.nextPostID++
	post.Stamp(time.Now())
	stored := *post
	stored.Comments = nil
	m.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) FindByID(_ context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post.CommentCount = m.commentCount(id)
	return &post, nil
}

func (m *PostRepository) FindByIDWithComments(_ context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	post.Comments = []models.Comment{}
	for _, c := range m.comments {
		if c.PostID == id {
			post.Comments = append(post.Comments, c)
		}
	}
	repositories.SortComments(post.Comments)
	post.CommentCount = int64(len(post.Comments))
	return &post, nil
}

func (m *PostRepository) ExistsByID(_ context.Context, id int64) (bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, exists := m.posts[id]
	return exists, nil
}

func (m *PostRepository) FindAll(_ context.Context, req repositories.PageRequest) (repositories.Page[models.Post], error) {
	return m.page(req, func(*models.Post) bool { return true })
}

func (m *PostRepository) FindByAuthor(_ context.Context, author string, req repositories.PageRequest) (repositories.Page[models.Post], error) {
	return m.page(req, func(p *models.Post) bool { return p.Author == author })
}

func (m *PostRepository) SearchByKeyword(_ context.Context, keyword string, req repositories.PageRequest) (repositories.Page[models.Post], error) {
	return m.page(req, func(p *models.Post) bool { return repositories.MatchesKeyword(p, keyword) })
}

func (m *PostRepository) page(req repositories.PageRequest, match func(*models.Post) bool) (repositories.Page[models.Post], error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return repositories.Page[models.Post]{}, m.Err
	}

	var posts []models.Post
	for _, p := range m.posts {
		if match(&p) {
			p.CommentCount = m.commentCount(p.ID)
			posts = append(posts, p)
		}
	}
	return repositories.PagePosts(posts, req), nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	stored, exists := m.posts[post.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	stored.Title = post.Title
	stored.Body = post.Body
	stored.UpdatedAt = post.UpdatedAt
	m.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	for cid, c := range m.comments {
		if c.PostID == id {
			delete(m.comments, cid)
		}
	}
	delete(m.posts, id)
	return nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	postID := comment.PostRef()
	if _, exists := m.posts[postID]; !exists {
		return fmt.Errorf("post %d: %w", postID, repositories.ErrNotFound)
	}
	comment.ID = m.nextCommentID
	m.nextCommentID++
	comment.PostID = postID
	comment.Stamp(time.Now())
	stored := *comment
	stored.Post = nil
	m.comments[comment.ID] = stored
	return nil
}

func (m *CommentRepository) GetByID(_ context.Context, id int64) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) ListByPost(_ context.Context, postID int64) ([]models.Comment, error) {
	return m.list(func(c *models.Comment) bool { return c.PostID == postID })
}

func (m *CommentRepository) ListByAuthor(_ context.Context, author string) ([]models.Comment, error) {
	return m.list(func(c *models.Comment) bool { return c.Author == author })
}

func (m *CommentRepository) list(match func(*models.Comment) bool) ([]models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := []models.Comment{}
	for _, c := range m.comments {
		if match(&c) {
			comments = append(comments, c)
		}
	}
	repositories.SortComments(comments)
	return comments, nil
}

func (m *CommentRepository) Update(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	stored, exists := m.comments[comment.ID]
	if !exists {
		return repositories.ErrNotFound
	}
	stored.Content = comment.Content
	stored.UpdatedAt = comment.UpdatedAt
	m.comments[comment.ID] = stored
	return nil
}

func (m *CommentRepository) Delete(_ context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}
