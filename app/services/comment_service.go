package services

import (
	"context"
	"fmt"
	"time"

	"board/app/dto"
	"board/app/repositories"
	"board/logger"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	now         func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		now:         time.Now,
	}
}

// AddComment validates and attaches a new comment to an existing post
func (s *CommentService) AddComment(ctx context.Context, postID int64, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	// Verify post exists
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "post", postID)
	}

	comment := req.ToEntity()
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, notFoundOr(err, "post", postID)
	}
	logger.InfoWithFields("comment created", logger.Fields{"comment_id": comment.ID, "post_id": postID})

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// ListComments retrieves all comments of a post, oldest first
func (s *CommentService) ListComments(ctx context.Context, postID int64) ([]dto.CommentResponse, error) {
	exists, err := s.postRepo.ExistsByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	if !exists {
		return nil, &NotFoundError{Resource: "post", ID: postID}
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments of post %d: %w", postID, err)
	}
	return dto.NewCommentResponses(comments), nil
}

// ListCommentsByAuthor retrieves every comment written by author
func (s *CommentService) ListCommentsByAuthor(ctx context.Context, author string) ([]dto.CommentResponse, error) {
	comments, err := s.commentRepo.ListByAuthor(ctx, author)
	if err != nil {
		return nil, fmt.Errorf("list comments by %q: %w", author, err)
	}
	return dto.NewCommentResponses(comments), nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(ctx context.Context, id int64) (*dto.CommentResponse, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "comment", id)
	}
	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// UpdateComment replaces the content of a comment
func (s *CommentService) UpdateComment(ctx context.Context, id int64, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "comment", id)
	}
	comment.Content = req.Content
	comment.Touch(s.now())
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, notFoundOr(err, "comment", id)
	}

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// DeleteComment deletes a comment by ID
func (s *CommentService) DeleteComment(ctx context.Context, id int64) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "comment", id)
	}
	return nil
}
