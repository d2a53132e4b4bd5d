package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID         string    `gorm:"primaryKey;size:50" json:"id"`
	PostID     string    `gorm:"size:50;not null;index" json:"postId"`
	AuthorID   string    `gorm:"size:50;not null" json:"authorId"`
	AuthorName string    `gorm:"size:100" json:"authorName"`
	Content    string    `gorm:"not null" json:"content"`
	ParentID   *string   `gorm:"size:50" json:"parentId"`
	Depth      int       `gorm:"default:0" json:"depth"` // client-supplied, stored as-is
	Upvotes    int       `gorm:"default:0" json:"upvotes"`
	Downvotes  int       `gorm:"default:0" json:"downvotes"`
	Timestamp  time.Time `json:"timestamp"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID("comm")
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	return nil
}

type CreateCommentRequest struct {
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parentId"`
	Depth    int     `json:"depth"`
}
