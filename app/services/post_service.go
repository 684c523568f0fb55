package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"board/app/dto"
	"board/app/repositories"
	"board/logger"
)

// PostService handles business logic for board posts
type PostService struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// ListPosts returns one page of posts with its paging metadata
func (s *PostService) ListPosts(ctx context.Context, req repositories.PageRequest) (*dto.PostListResponse, error) {
	page, err := s.postRepo.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	resp := dto.NewPostListResponse(page)
	return &resp, nil
}

// ListPostsByAuthor returns one page of the posts written by author
func (s *PostService) ListPostsByAuthor(ctx context.Context, author string, req repositories.PageRequest) (*dto.PostListResponse, error) {
	page, err := s.postRepo.FindByAuthor(ctx, author, req)
	if err != nil {
		return nil, fmt.Errorf("list posts by %q: %w", author, err)
	}
	resp := dto.NewPostListResponse(page)
	return &resp, nil
}

// SearchPosts returns one page of posts whose title or body contains keyword
func (s *PostService) SearchPosts(ctx context.Context, keyword string, req repositories.PageRequest) (*dto.PostListResponse, error) {
	page, err := s.postRepo.SearchByKeyword(ctx, keyword, req)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	resp := dto.NewPostListResponse(page)
	return &resp, nil
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(ctx context.Context, id int64) (*dto.PostDetailResponse, error) {
	post, err := s.postRepo.FindByIDWithComments(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post", id)
	}
	resp := dto.NewPostDetailResponse(post)
	return &resp, nil
}

// CreatePost validates and stores a new post
func (s *PostService) CreatePost(ctx context.Context, req dto.CreatePostRequest) (*dto.PostResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	post := req.ToEntity()
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	logger.InfoWithFields("post created", logger.Fields{"post_id": post.ID, "author": post.Author})

	resp := dto.NewPostResponse(post)
	return &resp, nil
}

// UpdatePost replaces the title and body of a post
func (s *PostService) UpdatePost(ctx context.Context, id int64, req dto.UpdatePostRequest) (*dto.PostResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "post", id)
	}
	post.ApplyUpdate(req.Title, req.Body, s.now())
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, notFoundOr(err, "post", id)
	}

	resp := dto.NewPostResponse(post)
	return &resp, nil
}

// DeletePost deletes a post and all its comments
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "post", id)
	}
	logger.InfoWithFields("post deleted", logger.Fields{"post_id": id})
	return nil
}

// notFoundOr turns a missing-record error into a NotFoundError and wraps
// anything else.
func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return fmt.Errorf("%s %d: %w", resource, id, err)
}
