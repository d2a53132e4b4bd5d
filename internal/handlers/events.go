package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/metrics"
	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/notify"
	"github.com/Qoziwe/EventummMobile/internal/uploads"
	"github.com/Qoziwe/EventummMobile/internal/views"
)

type EventHandler struct {
	db        *gorm.DB
	publisher message.Publisher
	store     *uploads.Store
	limiter   *views.Limiter
}

func NewEventHandler(db *gorm.DB, publisher message.Publisher, store *uploads.Store) *EventHandler {
	return &EventHandler{
		db:        db,
		publisher: publisher,
		store:     store,
		limiter:   views.NewLimiter(db),
	}
}

var monthsRu = [12]string{"янв", "фев", "мар", "апр", "мая", "июн", "июл", "авг", "сен", "окт", "ноя", "дек"}

// formatEventDate renders "<day> <3-letter-month>, <HH:MM>" from the
// scheduled timestamp, falling back to the creation time.
func formatEventDate(e *models.Event) string {
	var dt time.Time
	if e.EventTimestamp != 0 {
		dt = time.UnixMilli(e.EventTimestamp).UTC()
	} else {
		dt = e.AddedAt.UTC()
	}
	return fmt.Sprintf("%d %s, %02d:%02d", dt.Day(), monthsRu[dt.Month()-1], dt.Hour(), dt.Minute())
}

type createEventRequest struct {
	Title           string   `json:"title" binding:"required"`
	FullDescription string   `json:"fullDescription"`
	TimeRange       string   `json:"timeRange"`
	Vibe            string   `json:"vibe"`
	District        string   `json:"district"`
	AgeLimit        int      `json:"ageLimit"`
	Tags            []string `json:"tags"`
	Categories      []string `json:"categories"`
	PriceValue      float64  `json:"priceValue"`
	Location        string   `json:"location"`
	Image           string   `json:"image"`
	Timestamp       int64    `json:"timestamp"`
}

// updateEventRequest mirrors createEventRequest with every field
// optional; omitted fields keep their stored values.
type updateEventRequest struct {
	Title           string   `json:"title"`
	FullDescription string   `json:"fullDescription"`
	TimeRange       string   `json:"timeRange"`
	Vibe            string   `json:"vibe"`
	District        string   `json:"district"`
	AgeLimit        int      `json:"ageLimit"`
	Tags            []string `json:"tags"`
	Categories      []string `json:"categories"`
	PriceValue      float64  `json:"priceValue"`
	Location        string   `json:"location"`
	Image           string   `json:"image"`
	Timestamp       int64    `json:"timestamp"`
}

// loadOwnedEvent fetches the event and enforces organizer ownership.
func loadOwnedEvent(db *gorm.DB, eventID, userID string) (*models.Event, error) {
	var event models.Event
	err := db.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, apperr.ErrForbidden
	}
	return &event, nil
}

// CreateEvent creates an event and hands the publication to the fan-out
// worker (PROTECTED - requires authentication)
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var organizer models.User
	if err := h.db.First(&organizer, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organizer not found"})
		return
	}

	var input createEventRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vibe := input.Vibe
	if vibe == "" {
		vibe = "chill"
	}
	timestamp := input.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	event := models.Event{
		Title:           input.Title,
		FullDescription: input.FullDescription,
		OrganizerName:   organizer.Name,
		OrganizerAvatar: organizer.AvatarURL,
		TimeRange:       input.TimeRange,
		OrganizerID:     organizer.ID,
		Vibe:            vibe,
		District:        input.District,
		AgeLimit:        input.AgeLimit,
		Tags:            input.Tags,
		Categories:      input.Categories,
		EventTimestamp:  timestamp,
		PriceValue:      input.PriceValue,
		Location:        input.Location,
		Image:           input.Image,
	}

	if err := h.db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	err := notify.PublishEventCreated(h.publisher, notify.EventPublished{
		EventID:     event.ID,
		OrganizerID: organizer.ID,
	})
	if err != nil {
		// Event is created; followers just miss the notification.
		log.Printf("events: publish trigger for %s failed: %v", event.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"id": event.ID})
}

// GetEvents returns all events in the denormalized display form
func (h *EventHandler) GetEvents(c *gin.Context) {
	var events []models.Event
	if err := h.db.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	// Organizer avatars change after events are created; prefer the live one.
	avatars := make(map[string]string)
	var organizers []models.User
	if err := h.db.Select("id", "avatar_url").Find(&organizers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	for _, o := range organizers {
		avatars[o.ID] = o.AvatarURL
	}

	responses := make([]gin.H, 0, len(events))
	for i := range events {
		e := &events[i]
		avatar := e.OrganizerAvatar
		if live, ok := avatars[e.OrganizerID]; ok && live != "" {
			avatar = live
		}
		responses = append(responses, gin.H{
			"id":              e.ID,
			"title":           e.Title,
			"fullDescription": e.FullDescription,
			"organizerName":   e.OrganizerName,
			"organizerAvatar": avatar,
			"timeRange":       e.TimeRange,
			"organizerId":     e.OrganizerID,
			"vibe":            e.Vibe,
			"district":        e.District,
			"ageLimit":        e.AgeLimit,
			"tags":            e.Tags,
			"categories":      e.Categories,
			"priceValue":      e.PriceValue,
			"location":        e.Location,
			"image":           e.Image,
			"views":           e.Views,
			"timestamp":       e.EventTimestamp,
			"date":            formatEventDate(e),
		})
	}

	c.JSON(http.StatusOK, responses)
}

// UpdateEvent updates an event (PROTECTED - requires ownership)
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	event, err := loadOwnedEvent(h.db, c.Param("id"), userID)
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if errors.Is(err, apperr.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own events"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	var input updateEventRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Image != "" && input.Image != event.Image {
		h.store.DeleteEventImage(event.Image)
		event.Image = input.Image
	}
	if input.Title != "" {
		event.Title = input.Title
	}
	if input.FullDescription != "" {
		event.FullDescription = input.FullDescription
	}
	if input.Location != "" {
		event.Location = input.Location
	}
	if input.District != "" {
		event.District = input.District
	}
	if input.PriceValue != 0 {
		event.PriceValue = input.PriceValue
	}
	if input.Vibe != "" {
		event.Vibe = input.Vibe
	}
	if input.AgeLimit != 0 {
		event.AgeLimit = input.AgeLimit
	}
	if input.Categories != nil {
		event.Categories = input.Categories
	}
	if input.Tags != nil {
		event.Tags = input.Tags
	}
	if input.Timestamp != 0 {
		event.EventTimestamp = input.Timestamp
	}
	if input.TimeRange != "" {
		event.TimeRange = input.TimeRange
	}

	if err := h.db.Save(event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated"})
}

// DeleteEvent deletes an event with its views, tickets and favorites
// (PROTECTED - requires ownership)
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	event, err := loadOwnedEvent(h.db, c.Param("id"), userID)
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if errors.Is(err, apperr.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	h.store.DeleteEventImage(event.Image)

	if err := deleteEventData(h.db, event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// deleteEventData removes the event and everything hanging off it in one
// transaction so no orphan rows stay queryable.
func deleteEventData(db *gorm.DB, event *models.Event) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Ticket{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM favorites WHERE event_id = ?", event.ID).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
}

// RegisterView records one event view subject to bot filtering, the
// per-IP throttle and the dedup windows (optional authentication)
func (h *EventHandler) RegisterView(c *gin.Context) {
	var userID *string
	if id, ok := middleware.UserID(c); ok {
		userID = &id
	}

	result, err := h.limiter.Register(
		c.Request.Context(),
		c.Param("id"),
		userID,
		c.ClientIP(),
		c.GetHeader("User-Agent"),
	)
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register view"})
		return
	}

	switch result.Reason {
	case views.ReasonCounted:
		metrics.ViewsCounted.Inc()
		c.JSON(http.StatusOK, gin.H{"views": result.Views, "message": "View counted"})
	case views.ReasonBot:
		metrics.ViewsRejected.WithLabelValues(result.Reason).Inc()
		c.JSON(http.StatusOK, gin.H{"views": result.Views, "message": "Bot detected"})
	case views.ReasonRateLimited:
		metrics.ViewsRejected.WithLabelValues(result.Reason).Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"views": result.Views, "message": "Rate limit exceeded"})
	default:
		metrics.ViewsRejected.WithLabelValues(result.Reason).Inc()
		c.JSON(http.StatusOK, gin.H{"views": result.Views, "message": "Already viewed recently"})
	}
}

// UploadImage stores an event image and returns its URL (PROTECTED)
func (h *EventHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	url, err := h.store.SaveEventImage(file, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}
