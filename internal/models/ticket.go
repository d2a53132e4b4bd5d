package models

import (
	"time"

	"gorm.io/gorm"
)

// Ticket is a bookkeeping record only — no payment flow, no refund path.
type Ticket struct {
	ID           string    `gorm:"primaryKey;size:50" json:"id"`
	EventID      string    `gorm:"size:50;not null;uniqueIndex:unique_event_user_ticket" json:"eventId"`
	UserID       string    `gorm:"size:50;not null;uniqueIndex:unique_event_user_ticket" json:"-"`
	Quantity     int       `gorm:"default:1" json:"quantity"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Event        Event     `gorm:"foreignKey:EventID" json:"-"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID("tick")
	}
	if t.PurchaseDate.IsZero() {
		t.PurchaseDate = time.Now().UTC()
	}
	return nil
}
