package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var notifs []models.Notification
	err := h.db.Where("recipient_id = ?", userID).Order("timestamp desc").Find(&notifs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	if notifs == nil {
		notifs = []models.Notification{}
	}
	c.JSON(http.StatusOK, notifs)
}

// MarkRead flips the read flag on one notification, or on all unread
// ones when no id is given
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		NotificationID string `json:"notificationId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := h.db.Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if input.NotificationID != "" {
		query = query.Where("id = ?", input.NotificationID)
	} else {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}
