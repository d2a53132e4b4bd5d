package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID           string    `gorm:"primaryKey;size:50" json:"id"`
	CategorySlug string    `gorm:"size:100" json:"categorySlug"`
	CategoryName string    `gorm:"size:100" json:"categoryName"`
	AuthorID     string    `gorm:"size:50;not null;index" json:"authorId"`
	AuthorName   string    `gorm:"size:100" json:"authorName"`
	Content      string    `gorm:"not null" json:"content"`
	AgeLimit     int       `gorm:"default:0" json:"ageLimit"`
	Timestamp    time.Time `json:"timestamp"`

	// Denormalized counters; must always match the PostVote rows for this
	// post (the vote ledger mutates both in one transaction).
	Upvotes   int `gorm:"default:0" json:"upvotes"`
	Downvotes int `gorm:"default:0" json:"downvotes"`

	Votes    []PostVote `gorm:"foreignKey:PostID" json:"-"`
	Comments []Comment  `gorm:"foreignKey:PostID" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID("post")
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	return nil
}

type CreatePostRequest struct {
	CategorySlug string `json:"categorySlug"`
	CategoryName string `json:"categoryName"`
	Content      string `json:"content" binding:"required"`
	AgeLimit     int    `json:"ageLimit"`
}
