package handlers

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/realtime"
	"github.com/Qoziwe/EventummMobile/internal/uploads"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Event        *EventHandler
	Post         *PostHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Ticket       *TicketHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, hub *realtime.Hub, publisher message.Publisher, store *uploads.Store, jwtSecret string) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(db, jwtSecret),
		User:         NewUserHandler(db, store),
		Event:        NewEventHandler(db, publisher, store),
		Post:         NewPostHandler(db, hub),
		Comment:      NewCommentHandler(db, hub),
		Notification: NewNotificationHandler(db),
		Ticket:       NewTicketHandler(db),
	}
}
