package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StringList stores a JSON array of strings in a jsonb column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

type Event struct {
	ID              string     `gorm:"primaryKey;size:50" json:"id"`
	Title           string     `gorm:"size:200;not null" json:"title"`
	FullDescription string     `json:"fullDescription"`
	OrganizerName   string     `gorm:"size:100" json:"organizerName"`
	OrganizerAvatar string     `gorm:"size:500" json:"organizerAvatar"`
	TimeRange       string     `gorm:"size:100" json:"timeRange"`
	OrganizerID     string     `gorm:"size:50;not null;index" json:"organizerId"`
	Vibe            string     `gorm:"size:50" json:"vibe"`
	District        string     `gorm:"size:100" json:"district"`
	AgeLimit        int        `gorm:"default:0" json:"ageLimit"`
	Tags            StringList `gorm:"type:jsonb" json:"tags"`
	Categories      StringList `gorm:"type:jsonb" json:"categories"`
	AddedAt         time.Time  `json:"-"`
	EventTimestamp  int64      `json:"timestamp"` // unix millis, 0 when unscheduled
	PriceValue      float64    `gorm:"default:0" json:"priceValue"`
	Location        string     `gorm:"size:200" json:"location"`
	Image           string     `gorm:"size:500" json:"image"`
	Views           int64      `gorm:"default:0" json:"views"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID("event")
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now().UTC()
	}
	return nil
}

// EventView is one row per accepted view registration. Authenticated rows
// are additionally unique on (event_id, user_id) via a partial index;
// anonymous rows carry a NULL user_id and are only window-deduplicated.
type EventView struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"size:50;not null;index:idx_event_view_time" json:"event_id"`
	UserID    *string   `gorm:"size:50" json:"user_id"`
	IPAddress string    `gorm:"size:45;index" json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	ViewedAt  time.Time `gorm:"index:idx_event_view_time" json:"viewed_at"`
}
