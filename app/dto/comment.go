package dto

import (
	"time"

	"board/app/models"
)

// CreateCommentRequest is the payload for adding a comment to a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"notblank"`
	Author  string `json:"author" validate:"notblank,max=50"`
}

// ToEntity builds an unsaved comment with no post association.
func (r CreateCommentRequest) ToEntity() *models.Comment {
	return &models.Comment{
		Content: r.Content,
		Author:  r.Author,
	}
}

// UpdateCommentRequest is the payload for editing a comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"notblank"`
}

// CommentResponse is the view of a comment
type CommentResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	PostID    int64     `json:"postId"`
}

// NewCommentResponse converts a comment. PostID is 0 when the comment has no
// owning post, which only happens for entities that were never persisted.
func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		PostID:    c.PostRef(),
	}
}

// NewCommentResponses converts comments, keeping their order.
func NewCommentResponses(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i := range comments {
		out[i] = NewCommentResponse(&comments[i])
	}
	return out
}
