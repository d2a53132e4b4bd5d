package models

import "time"

const (
	NotificationNewEvent = "new_event"
	NotificationSystem   = "system"
)

// Notification is immutable once created except for the read flag.
// The id embeds the fan-out batch timestamp and the recipient so ids
// stay unique even when a whole batch shares one timestamp.
type Notification struct {
	ID          string    `gorm:"primaryKey;size:50" json:"id"`
	RecipientID string    `gorm:"size:50;not null;index" json:"recipientId"`
	Type        string    `gorm:"size:20;not null" json:"type"` // "new_event" or "system"
	Content     string    `gorm:"size:255;not null" json:"content"`
	RelatedID   string    `gorm:"size:50" json:"relatedId"`
	IsRead      bool      `gorm:"default:false" json:"isRead"`
	Timestamp   time.Time `json:"timestamp"`
}
