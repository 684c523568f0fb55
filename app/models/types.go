package models

import "time"

// Post represents a board post with comments.
type Post struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	Author       string    `gorm:"size:50;not null;index" json:"author"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	Comments     []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CommentCount int64     `gorm:"->;-:migration" json:"-"`
}

// Comment represents a comment on a board post.
//
// PostID is the stored owner reference. Post is filled on demand and is never
// written back by any repository.
type Comment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    string    `gorm:"size:50;not null;index" json:"author"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
	PostID    int64     `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"-" json:"-"`
}
