package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/testdb"
	"github.com/Qoziwe/EventummMobile/internal/uploads"
)

func TestFormatEventDate(t *testing.T) {
	cases := []struct {
		name   string
		millis int64
		want   string
	}{
		{"summer evening", time.Date(2026, time.June, 15, 19, 30, 0, 0, time.UTC).UnixMilli(), "15 июн, 19:30"},
		{"single digit day", time.Date(2026, time.January, 3, 9, 5, 0, 0, time.UTC).UnixMilli(), "3 янв, 09:05"},
		{"december", time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC).UnixMilli(), "31 дек, 23:59"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := models.Event{EventTimestamp: tc.millis}
			assert.Equal(t, tc.want, formatEventDate(&event))
		})
	}
}

func TestFormatEventDateFallsBackToAddedAt(t *testing.T) {
	event := models.Event{AddedAt: time.Date(2026, time.March, 8, 12, 0, 0, 0, time.UTC)}
	assert.Equal(t, "8 мар, 12:00", formatEventDate(&event))
}

func TestDeleteEventDataRemovesDependents(t *testing.T) {
	db := testdb.New(t)

	organizer := models.User{Name: "Организатор", Username: "org", Email: "org@example.com", Password: "x"}
	require.NoError(t, db.Create(&organizer).Error)
	fan := models.User{Name: "Фанат", Username: "fan", Email: "fan@example.com", Password: "x"}
	require.NoError(t, db.Create(&fan).Error)

	event := models.Event{Title: "Ночь кино", OrganizerID: organizer.ID}
	require.NoError(t, db.Create(&event).Error)
	other := models.Event{Title: "Другое", OrganizerID: organizer.ID}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, db.Create(&models.EventView{EventID: event.ID, UserID: &fan.ID, IPAddress: "10.0.0.1", ViewedAt: time.Now().UTC()}).Error)
	require.NoError(t, db.Create(&models.EventView{EventID: other.ID, UserID: &fan.ID, IPAddress: "10.0.0.1", ViewedAt: time.Now().UTC()}).Error)
	require.NoError(t, db.Create(&models.Ticket{EventID: event.ID, UserID: fan.ID}).Error)
	require.NoError(t, db.Model(&fan).Association("SavedEvents").Append(&event))
	require.NoError(t, db.Model(&fan).Association("SavedEvents").Append(&other))

	require.NoError(t, deleteEventData(db, &event))

	var events int64
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Count(&events).Error)
	assert.Zero(t, events)

	var views int64
	require.NoError(t, db.Model(&models.EventView{}).Where("event_id = ?", event.ID).Count(&views).Error)
	assert.Zero(t, views)

	var tickets int64
	require.NoError(t, db.Model(&models.Ticket{}).Where("event_id = ?", event.ID).Count(&tickets).Error)
	assert.Zero(t, tickets)

	var favorites int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM favorites WHERE event_id = ?", event.ID).Scan(&favorites).Error)
	assert.Zero(t, favorites)

	// Unrelated rows survive.
	assertRowCount(t, db, &models.EventView{}, "event_id = ?", other.ID, 1)
	assert.EqualValues(t, 1, db.Model(&fan).Association("SavedEvents").Count())
}

func assertRowCount(t *testing.T, db *gorm.DB, model interface{}, query string, arg interface{}, want int64) {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where(query, arg).Count(&count).Error)
	assert.Equal(t, want, count)
}

func TestLoadOwnedEvent(t *testing.T) {
	db := testdb.New(t)

	owner := models.User{Name: "Владелец", Username: "owner", Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	stranger := models.User{Name: "Прохожий", Username: "stranger", Email: "stranger@example.com", Password: "x"}
	require.NoError(t, db.Create(&stranger).Error)

	event := models.Event{Title: "Лекция", OrganizerID: owner.ID}
	require.NoError(t, db.Create(&event).Error)

	got, err := loadOwnedEvent(db, event.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	_, err = loadOwnedEvent(db, event.ID, stranger.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = loadOwnedEvent(db, "event_missing", owner.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func eventRouter(t *testing.T, db *gorm.DB, userID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := uploads.NewStore(t.TempDir())
	require.NoError(t, err)
	handler := NewEventHandler(db, nil, store)

	r := gin.New()
	asUser := func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
	r.GET("/api/events", handler.GetEvents)
	r.PUT("/api/events/:id", asUser, handler.UpdateEvent)
	r.DELETE("/api/events/:id", asUser, handler.DeleteEvent)
	return r
}

func TestUpdateEventPartialBody(t *testing.T) {
	db := testdb.New(t)

	owner := models.User{Name: "Владелец", Username: "owner", Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	event := models.Event{Title: "Старое название", District: "Алмалы", OrganizerID: owner.ID}
	require.NoError(t, db.Create(&event).Error)

	r := eventRouter(t, db, owner.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID, strings.NewReader(`{"district":"Медеу"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Event
	require.NoError(t, db.First(&updated, "id = ?", event.ID).Error)
	assert.Equal(t, "Старое название", updated.Title)
	assert.Equal(t, "Медеу", updated.District)
}

func TestUpdateEventForbiddenForNonOwner(t *testing.T) {
	db := testdb.New(t)

	owner := models.User{Name: "Владелец", Username: "owner", Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	stranger := models.User{Name: "Прохожий", Username: "stranger", Email: "stranger@example.com", Password: "x"}
	require.NoError(t, db.Create(&stranger).Error)
	event := models.Event{Title: "Чужое", OrganizerID: owner.ID}
	require.NoError(t, db.Create(&event).Error)

	r := eventRouter(t, db, stranger.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID, strings.NewReader(`{"title":"Моё теперь"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/events/"+event.ID, nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetEventsFailsWhenOrganizerLookupFails(t *testing.T) {
	db := testdb.New(t)

	owner := models.User{Name: "Владелец", Username: "owner", Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	event := models.Event{Title: "Событие", OrganizerID: owner.ID}
	require.NoError(t, db.Create(&event).Error)

	require.NoError(t, db.Exec("DROP TABLE users CASCADE").Error)

	r := eventRouter(t, db, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
