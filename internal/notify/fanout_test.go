package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/realtime"
	"github.com/Qoziwe/EventummMobile/internal/testdb"
)

type recordedMessage struct {
	topic string
	event string
	data  interface{}
}

// recordingHub captures live deliveries instead of pushing to sockets.
type recordingHub struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (r *recordingHub) Publish(topic, event string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, recordedMessage{topic: topic, event: event, data: data})
}

func seedOrganizerWithFollowers(t *testing.T, db *gorm.DB, followers int) (string, []string) {
	t.Helper()

	organizer := models.User{Name: "Айгерим", Username: "aigerim", Email: "aigerim@example.com", Password: "x", UserType: "organizer"}
	require.NoError(t, db.Create(&organizer).Error)

	ids := make([]string, 0, followers)
	for i := 0; i < followers; i++ {
		follower := models.User{
			Name:     fmt.Sprintf("Follower %d", i),
			Username: fmt.Sprintf("follower%d", i),
			Email:    fmt.Sprintf("follower%d@example.com", i),
			Password: "x",
		}
		require.NoError(t, db.Create(&follower).Error)
		require.NoError(t, db.Create(&models.Follow{FollowerID: follower.ID, OrganizerID: organizer.ID}).Error)
		ids = append(ids, follower.ID)
	}
	return organizer.ID, ids
}

func TestFanoutWritesOnePerFollower(t *testing.T) {
	db := testdb.New(t)
	hub := &recordingHub{}
	organizerID, followerIDs := seedOrganizerWithFollowers(t, db, 3)

	event := models.Event{Title: "Концерт под открытым небом", OrganizerID: organizerID}
	require.NoError(t, db.Create(&event).Error)

	svc := NewService(db, hub)
	written, err := svc.Fanout(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	var notifs []models.Notification
	require.NoError(t, db.Order("recipient_id").Find(&notifs).Error)
	require.Len(t, notifs, 3)

	seen := make(map[string]bool)
	batch := notifs[0].Timestamp
	for _, n := range notifs {
		assert.False(t, seen[n.ID], "notification ids must be unique within a batch")
		seen[n.ID] = true
		assert.Equal(t, models.NotificationNewEvent, n.Type)
		assert.Equal(t, event.ID, n.RelatedID)
		assert.Equal(t, "Айгерим создал(а): Концерт под открытым небом", n.Content)
		assert.False(t, n.IsRead)
		assert.True(t, n.Timestamp.Equal(batch), "batch shares one timestamp")
	}

	// One live message per follower, on that follower's private topic.
	require.Len(t, hub.messages, 3)
	topics := make(map[string]bool)
	for _, m := range hub.messages {
		assert.Equal(t, "new_notification", m.event)
		topics[m.topic] = true
	}
	for _, id := range followerIDs {
		assert.True(t, topics[realtime.UserTopic(id)], "missing delivery for %s", id)
	}
}

func TestFanoutNoFollowers(t *testing.T) {
	db := testdb.New(t)
	hub := &recordingHub{}
	organizerID, _ := seedOrganizerWithFollowers(t, db, 0)

	event := models.Event{Title: "Пустой зал", OrganizerID: organizerID}
	require.NoError(t, db.Create(&event).Error)

	svc := NewService(db, hub)
	written, err := svc.Fanout(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, written)
	assert.Empty(t, hub.messages)
}

func TestFanoutChunksLargeFollowerSets(t *testing.T) {
	db := testdb.New(t)
	hub := &recordingHub{}
	organizerID, _ := seedOrganizerWithFollowers(t, db, 5)

	event := models.Event{Title: "Чанки", OrganizerID: organizerID}
	require.NoError(t, db.Create(&event).Error)

	svc := NewService(db, hub)
	svc.chunkSize = 2

	written, err := svc.Fanout(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, written)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)
	assert.Len(t, hub.messages, 5)
}

func TestFanoutUnknownEvent(t *testing.T) {
	db := testdb.New(t)
	svc := NewService(db, &recordingHub{})

	_, err := svc.Fanout(context.Background(), "event_missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
