package models

import "time"

// Follow model - an explicit edge in the follower graph. FollowerID is
// the subscribing user, OrganizerID the one being followed.
type Follow struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	FollowerID  string    `gorm:"size:50;not null;uniqueIndex:unique_follower_organizer" json:"follower_id"`
	OrganizerID string    `gorm:"size:50;not null;uniqueIndex:unique_follower_organizer;index" json:"organizer_id"`
	Follower    User      `gorm:"foreignKey:FollowerID" json:"-"`
	Organizer   User      `gorm:"foreignKey:OrganizerID" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
