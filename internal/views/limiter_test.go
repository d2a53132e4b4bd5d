package views

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/testdb"
)

func seedEvent(t *testing.T, db *gorm.DB, organizerID string) string {
	t.Helper()
	event := models.Event{Title: "Джазовый вечер", OrganizerID: organizerID}
	require.NoError(t, db.Create(&event).Error)
	return event.ID
}

func seedViewer(t *testing.T, db *gorm.DB, n int) string {
	t.Helper()
	user := models.User{
		Name:     fmt.Sprintf("Viewer %d", n),
		Username: fmt.Sprintf("viewer%d", n),
		Email:    fmt.Sprintf("viewer%d@example.com", n),
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func eventViews(t *testing.T, db *gorm.DB, eventID string) int64 {
	t.Helper()
	var event models.Event
	require.NoError(t, db.First(&event, "id = ?", eventID).Error)
	return event.Views
}

func TestBotRejected(t *testing.T) {
	db := testdb.New(t)
	organizer := seedViewer(t, db, 1)
	eventID := seedEvent(t, db, organizer)
	limiter := NewLimiter(db)

	res, err := limiter.Register(context.Background(), eventID, nil, "10.0.0.1", "Googlebot/2.1")
	require.NoError(t, err)

	assert.False(t, res.Counted)
	assert.Equal(t, ReasonBot, res.Reason)
	assert.EqualValues(t, 0, eventViews(t, db, eventID))

	// No view row either - rejected calls never write.
	var rows int64
	require.NoError(t, db.Model(&models.EventView{}).Count(&rows).Error)
	assert.EqualValues(t, 0, rows)
}

func TestAuthenticatedDedupWindow(t *testing.T) {
	db := testdb.New(t)
	organizer := seedViewer(t, db, 1)
	viewer := seedViewer(t, db, 2)
	eventID := seedEvent(t, db, organizer)
	limiter := NewLimiter(db)
	ctx := context.Background()

	first, err := limiter.Register(ctx, eventID, &viewer, "10.0.0.2", "EventumApp/1.0")
	require.NoError(t, err)
	assert.True(t, first.Counted)
	assert.EqualValues(t, 1, first.Views)

	second, err := limiter.Register(ctx, eventID, &viewer, "10.0.0.2", "EventumApp/1.0")
	require.NoError(t, err)
	assert.False(t, second.Counted)
	assert.Equal(t, ReasonDuplicate, second.Reason)
	assert.EqualValues(t, 1, second.Views)
	assert.EqualValues(t, 1, eventViews(t, db, eventID))
}

func TestAnonymousDedupByIP(t *testing.T) {
	db := testdb.New(t)
	organizer := seedViewer(t, db, 1)
	eventID := seedEvent(t, db, organizer)
	limiter := NewLimiter(db)
	ctx := context.Background()

	first, err := limiter.Register(ctx, eventID, nil, "10.0.0.3", "EventumApp/1.0")
	require.NoError(t, err)
	assert.True(t, first.Counted)

	second, err := limiter.Register(ctx, eventID, nil, "10.0.0.3", "EventumApp/1.0")
	require.NoError(t, err)
	assert.False(t, second.Counted)
	assert.Equal(t, ReasonDuplicate, second.Reason)

	// A different IP is a different anonymous viewer.
	third, err := limiter.Register(ctx, eventID, nil, "10.0.0.4", "EventumApp/1.0")
	require.NoError(t, err)
	assert.True(t, third.Counted)
	assert.EqualValues(t, 2, eventViews(t, db, eventID))
}

func TestAnonymousDedupExpiresAfterWindow(t *testing.T) {
	db := testdb.New(t)
	organizer := seedViewer(t, db, 1)
	eventID := seedEvent(t, db, organizer)
	limiter := NewLimiter(db)

	// A view older than the one-hour anonymous window.
	stale := models.EventView{
		EventID:   eventID,
		IPAddress: "10.0.0.5",
		UserAgent: "EventumApp/1.0",
		ViewedAt:  time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", eventID).Update("views", 1).Error)

	res, err := limiter.Register(context.Background(), eventID, nil, "10.0.0.5", "EventumApp/1.0")
	require.NoError(t, err)
	assert.True(t, res.Counted)
	assert.EqualValues(t, 2, res.Views)
}

func TestRateLimitEleventhCall(t *testing.T) {
	db := testdb.New(t)
	organizer := seedViewer(t, db, 1)
	viewer := seedViewer(t, db, 2)
	limiter := NewLimiter(db)
	ctx := context.Background()

	// Ten accepted views from one IP across ten distinct events.
	ip := "10.0.0.6"
	for i := 0; i < 10; i++ {
		eventID := seedEvent(t, db, organizer)
		res, err := limiter.Register(ctx, eventID, &viewer, ip, "EventumApp/1.0")
		require.NoError(t, err)
		require.True(t, res.Counted, "view %d should be counted", i+1)
	}

	eventID := seedEvent(t, db, organizer)
	res, err := limiter.Register(ctx, eventID, &viewer, ip, "EventumApp/1.0")
	require.NoError(t, err)
	assert.False(t, res.Counted)
	assert.Equal(t, ReasonRateLimited, res.Reason)
	assert.EqualValues(t, 0, eventViews(t, db, eventID))
}

func TestUnknownEvent(t *testing.T) {
	db := testdb.New(t)
	limiter := NewLimiter(db)

	_, err := limiter.Register(context.Background(), "event_missing", nil, "10.0.0.7", "EventumApp/1.0")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
