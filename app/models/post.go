package models

import (
	"errors"
	"time"
)

// Stamp assigns the creation and update timestamps of a new post.
func (p *Post) Stamp(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
}

// Touch refreshes UpdatedAt, never moving it before CreatedAt.
func (p *Post) Touch(now time.Time) {
	if now.Before(p.CreatedAt) {
		now = p.CreatedAt
	}
	p.UpdatedAt = now
}

// ApplyUpdate replaces the editable fields of the post.
func (p *Post) ApplyUpdate(title, body string, now time.Time) {
	p.Title = title
	p.Body = body
	p.Touch(now)
}

// AddComment adds a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	comment.Post = p
	p.Comments = append(p.Comments, *comment)
	p.CommentCount = int64(len(p.Comments))
	return nil
}

// RemoveComment removes a comment from the post
func (p *Post) RemoveComment(commentID int64) error {
	for i, comment := range p.Comments {
		if comment.ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			p.CommentCount = int64(len(p.Comments))
			return nil
		}
	}
	return errors.New("comment not found")
}
