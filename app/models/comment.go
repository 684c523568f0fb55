package models

import (
	"errors"
	"time"
)

// Stamp assigns the creation and update timestamps of a new comment.
func (c *Comment) Stamp(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt
}

// Touch refreshes UpdatedAt, never moving it before CreatedAt.
func (c *Comment) Touch(now time.Time) {
	if now.Before(c.CreatedAt) {
		now = c.CreatedAt
	}
	c.UpdatedAt = now
}

// SetPost sets the parent post and updates the PostID
func (c *Comment) SetPost(post *Post) error {
	if post == nil {
		return errors.New("post cannot be nil")
	}

	c.Post = post
	c.PostID = post.ID
	return nil
}

// PostRef resolves the id of the owning post. A loaded Post wins over the
// stored PostID; 0 means the comment has no owner, which is never a valid
// persisted state.
func (c *Comment) PostRef() int64 {
	if c.Post != nil {
		return c.Post.ID
	}
	return c.PostID
}
