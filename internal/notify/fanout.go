// Package notify fans out event-publication notifications to followers:
// durable rows first, then best-effort live delivery per chunk.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/metrics"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/realtime"
)

// Broadcaster is the live-delivery side of the fan-out. *realtime.Hub
// satisfies it.
type Broadcaster interface {
	Publish(topic, event string, data interface{})
}

const defaultChunkSize = 500

type Service struct {
	db        *gorm.DB
	hub       Broadcaster
	chunkSize int
}

func NewService(db *gorm.DB, hub Broadcaster) *Service {
	return &Service{db: db, hub: hub, chunkSize: defaultChunkSize}
}

// Fanout writes one notification per follower of the event's organizer
// and pushes it to each follower's private topic. The whole batch shares
// one timestamp; ids embed that timestamp plus the recipient so they
// never collide inside a batch. Followers are processed in chunks so a
// big follower set never sits inside one long transaction; each chunk is
// persisted before any of its live messages go out. A recipient whose
// row cannot be written is logged and skipped — live messages already
// sent for earlier chunks are never retracted.
//
// Returns the number of durably written notifications.
func (s *Service) Fanout(ctx context.Context, eventID string) (int, error) {
	db := s.db.WithContext(ctx)

	var event models.Event
	err := db.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var organizer models.User
	if err := db.First(&organizer, "id = ?", event.OrganizerID).Error; err != nil {
		return 0, err
	}

	var follows []models.Follow
	if err := db.Where("organizer_id = ?", organizer.ID).Find(&follows).Error; err != nil {
		return 0, err
	}
	if len(follows) == 0 {
		return 0, nil
	}

	batch := time.Now().UTC()
	content := fmt.Sprintf("%s создал(а): %s", organizer.Name, event.Title)

	written := 0
	for start := 0; start < len(follows); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(follows) {
			end = len(follows)
		}

		notifs := make([]models.Notification, 0, end-start)
		for _, f := range follows[start:end] {
			notifs = append(notifs, models.Notification{
				ID:          fmt.Sprintf("notif_%d_%s", batch.UnixMilli(), f.FollowerID),
				RecipientID: f.FollowerID,
				Type:        models.NotificationNewEvent,
				Content:     content,
				RelatedID:   event.ID,
				IsRead:      false,
				Timestamp:   batch,
			})
		}

		persisted := s.persistChunk(db, notifs)
		written += len(persisted)
		metrics.NotificationsFanned.Add(float64(len(persisted)))

		for i := range persisted {
			n := &persisted[i]
			s.hub.Publish(realtime.UserTopic(n.RecipientID), "new_notification", n)
		}
	}

	return written, nil
}

// persistChunk tries the chunk as one transaction; if that fails it
// retries row by row so one bad recipient cannot sink the rest.
func (s *Service) persistChunk(db *gorm.DB, notifs []models.Notification) []models.Notification {
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&notifs).Error
	})
	if err == nil {
		return notifs
	}

	log.Printf("notify: chunk insert failed, retrying per recipient: %v", err)

	persisted := make([]models.Notification, 0, len(notifs))
	for i := range notifs {
		if err := db.Create(&notifs[i]).Error; err != nil {
			log.Printf("notify: skipping recipient %s: %v", notifs[i].RecipientID, err)
			continue
		}
		persisted = append(persisted, notifs[i])
	}
	return persisted
}
