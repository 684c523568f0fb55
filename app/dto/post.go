package dto

import (
	"time"

	"board/app/models"
	"board/app/repositories"
)

// CreatePostRequest is the payload for creating a post
type CreatePostRequest struct {
	Title  string `json:"title" validate:"notblank,max=200"`
	Body   string `json:"body" validate:"notblank"`
	Author string `json:"author" validate:"notblank,max=50"`
}

// ToEntity builds an unsaved post. Id and timestamps are left to storage.
func (r CreatePostRequest) ToEntity() *models.Post {
	return &models.Post{
		Title:  r.Title,
		Body:   r.Body,
		Author: r.Author,
	}
}

// UpdatePostRequest is the payload for editing a post
type UpdatePostRequest struct {
	Title string `json:"title" validate:"notblank,max=200"`
	Body  string `json:"body" validate:"notblank"`
}

// PostResponse is the list view of a post
type PostResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	CommentCount int64     `json:"commentCount"`
}

// NewPostResponse converts a post together with its comment count.
func NewPostResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:           p.ID,
		Title:        p.Title,
		Body:         p.Body,
		Author:       p.Author,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		CommentCount: p.CommentCount,
	}
}

// PostDetailResponse is a post together with all of its comments
type PostDetailResponse struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Author    string            `json:"author"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Comments  []CommentResponse `json:"comments"`
}

// NewPostDetailResponse converts a post whose comments are loaded. Each
// comment resolves its postId against p.
func NewPostDetailResponse(p *models.Post) PostDetailResponse {
	comments := make([]CommentResponse, len(p.Comments))
	for i := range p.Comments {
		c := p.Comments[i]
		if c.Post == nil && c.PostID == 0 {
			c.Post = p
		}
		comments[i] = NewCommentResponse(&c)
	}
	return PostDetailResponse{
		ID:        p.ID,
		Title:     p.Title,
		Body:      p.Body,
		Author:    p.Author,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Comments:  comments,
	}
}

// PostListResponse is one page of posts with its paging metadata
type PostListResponse struct {
	Posts         []PostResponse `json:"posts"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	CurrentPage   int            `json:"currentPage"`
	Size          int            `json:"size"`
}

// NewPostListResponse converts a page, copying its metadata unchanged.
func NewPostListResponse(page repositories.Page[models.Post]) PostListResponse {
	posts := make([]PostResponse, len(page.Content))
	for i := range page.Content {
		posts[i] = NewPostResponse(&page.Content[i])
	}
	return PostListResponse{
		Posts:         posts,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		CurrentPage:   page.Number,
		Size:          page.Size,
	}
}
