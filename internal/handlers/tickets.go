package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
)

type TicketHandler struct {
	db *gorm.DB
}

func NewTicketHandler(db *gorm.DB) *TicketHandler {
	return &TicketHandler{db: db}
}

// BuyTicket records a purchase. One ticket row per (event, user); buying
// again is an "already exists" outcome, not an error (PROTECTED)
func (h *TicketHandler) BuyTicket(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		EventID  string `json:"eventId" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity <= 0 {
		input.Quantity = 1
	}

	var event models.Event
	if err := h.db.First(&event, "id = ?", input.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	ticket := models.Ticket{
		EventID:  event.ID,
		UserID:   userID,
		Quantity: input.Quantity,
	}

	insert := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ticket)
	if insert.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to buy ticket"})
		return
	}
	if insert.RowsAffected == 0 {
		var existing models.Ticket
		h.db.Where("event_id = ? AND user_id = ?", event.ID, userID).First(&existing)
		c.JSON(http.StatusOK, gin.H{"message": "OK", "ticketId": existing.ID})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "OK", "ticketId": ticket.ID})
}

// GetMyTickets lists the caller's tickets with event titles (PROTECTED)
func (h *TicketHandler) GetMyTickets(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var tickets []models.Ticket
	if err := h.db.Preload("Event").Where("user_id = ?", userID).Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}

	responses := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		title := t.Event.Title
		if title == "" {
			title = "Unknown"
		}
		responses = append(responses, gin.H{
			"id":           t.ID,
			"eventId":      t.EventID,
			"quantity":     t.Quantity,
			"purchaseDate": t.PurchaseDate,
			"eventTitle":   title,
		})
	}

	c.JSON(http.StatusOK, responses)
}
