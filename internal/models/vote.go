package models

import "time"

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// PostVote model - tracks individual user votes on posts.
// At most one row per (user, post), enforced by the unique index.
type PostVote struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:50;not null;uniqueIndex:unique_user_post_vote" json:"user_id"`
	PostID    string    `gorm:"size:50;not null;uniqueIndex:unique_user_post_vote" json:"post_id"`
	VoteType  string    `gorm:"size:10;not null" json:"vote_type"` // "up" or "down"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
