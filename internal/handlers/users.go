package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/uploads"
)

type UserHandler struct {
	db    *gorm.DB
	store *uploads.Store
}

func NewUserHandler(db *gorm.DB, store *uploads.Store) *UserHandler {
	return &UserHandler{db: db, store: store}
}

func avatarInitials(name string) string {
	initials := ""
	for _, part := range strings.Fields(name) {
		initials += strings.ToUpper(string([]rune(part)[0]))
		if len([]rune(initials)) == 2 {
			break
		}
	}
	if initials == "" {
		return "UN"
	}
	return initials
}

// buildUserProfile assembles the profile shape the mobile client expects.
func buildUserProfile(db *gorm.DB, user *models.User) gin.H {
	var interests []models.Interest
	db.Model(user).Association("Interests").Find(&interests)
	interestNames := make([]string, 0, len(interests))
	for _, i := range interests {
		interestNames = append(interestNames, i.Name)
	}

	var saved []models.Event
	db.Model(user).Association("SavedEvents").Find(&saved)
	savedIDs := make([]string, 0, len(saved))
	for _, e := range saved {
		savedIDs = append(savedIDs, e.ID)
	}

	var tickets []models.Ticket
	db.Preload("Event").Where("user_id = ?", user.ID).Find(&tickets)
	purchased := make([]gin.H, 0, len(tickets))
	for _, t := range tickets {
		purchased = append(purchased, gin.H{
			"id":           t.ID,
			"eventId":      t.EventID,
			"quantity":     t.Quantity,
			"purchaseDate": t.PurchaseDate,
			"eventTitle":   t.Event.Title,
		})
	}

	var follows []models.Follow
	db.Where("follower_id = ?", user.ID).Find(&follows)
	followingIDs := make([]string, 0, len(follows))
	for _, f := range follows {
		followingIDs = append(followingIDs, f.OrganizerID)
	}

	role := "Исследователь"
	if user.UserType == "organizer" {
		role = "Организатор"
	}

	return gin.H{
		"id":                    user.ID,
		"name":                  user.Name,
		"username":              user.Username,
		"email":                 user.Email,
		"phone":                 user.Phone,
		"userType":              user.UserType,
		"location":              user.Location,
		"bio":                   user.Bio,
		"avatarUrl":             user.AvatarURL,
		"avatarInitials":        avatarInitials(user.Name),
		"subscriptionStatus":    user.SubscriptionStatus,
		"role":                  role,
		"interests":             interestNames,
		"stats":                 gin.H{"eventsAttended": len(tickets), "communitiesJoined": 0},
		"hasTickets":            len(tickets) > 0,
		"savedEventIds":         savedIDs,
		"purchasedTickets":      purchased,
		"followingOrganizerIds": followingIDs,
		"birthDate":             user.BirthDate,
	}
}

// UpdateProfile mutates the caller's own profile fields
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if v, ok := input["name"].(string); ok {
		user.Name = v
	}
	if v, ok := input["username"].(string); ok {
		newUsername := strings.ToLower(strings.TrimSpace(v))
		if newUsername != user.Username {
			var existing models.User
			if err := h.db.Where("username = ?", newUsername).First(&existing).Error; err == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
				return
			}
			user.Username = newUsername
		}
	}
	if v, ok := input["bio"].(string); ok {
		user.Bio = v
	}
	if v, ok := input["location"].(string); ok {
		user.Location = v
	}
	if v, ok := input["phone"].(string); ok {
		user.Phone = v
	}
	if v, ok := input["avatarUrl"].(string); ok {
		user.AvatarURL = v
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, buildUserProfile(h.db, &user))
}

// UpdateInterests replaces the caller's interest set
func (h *UserHandler) UpdateInterests(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		Interests []string `json:"interests"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	interests := make([]models.Interest, 0, len(input.Interests))
	for _, name := range input.Interests {
		interest := models.Interest{Name: name}
		h.db.FirstOrCreate(&interest, models.Interest{Name: name})
		interests = append(interests, interest)
	}

	if err := h.db.Model(&user).Association("Interests").Replace(interests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update interests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"interests": input.Interests})
}

// ToggleFavorite saves or unsaves an event for the caller
func (h *UserHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		EventID string `json:"eventId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	var event models.Event
	if err := h.db.First(&event, "id = ?", input.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	assoc := h.db.Model(&user).Association("SavedEvents")
	var existing []models.Event
	assoc.Find(&existing, "id = ?", event.ID)
	if len(existing) > 0 {
		assoc.Delete(&event)
	} else {
		assoc.Append(&event)
	}

	var saved []models.Event
	h.db.Model(&user).Association("SavedEvents").Find(&saved)
	savedIDs := make([]string, 0, len(saved))
	for _, e := range saved {
		savedIDs = append(savedIDs, e.ID)
	}

	c.JSON(http.StatusOK, gin.H{"savedEventIds": savedIDs})
}

// ToggleFollow follows or unfollows an organizer
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		OrganizerID string `json:"organizerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.OrganizerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		return
	}

	var organizer models.User
	if err := h.db.First(&organizer, "id = ?", input.OrganizerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var existing models.Follow
	err := h.db.Where("follower_id = ? AND organizer_id = ?", userID, organizer.ID).First(&existing).Error
	if err == nil {
		h.db.Delete(&existing)
	} else {
		follow := models.Follow{FollowerID: userID, OrganizerID: organizer.ID}
		if err := h.db.Create(&follow).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
			return
		}
	}

	var follows []models.Follow
	h.db.Where("follower_id = ?", userID).Find(&follows)
	followingIDs := make([]string, 0, len(follows))
	for _, f := range follows {
		followingIDs = append(followingIDs, f.OrganizerID)
	}

	c.JSON(http.StatusOK, gin.H{"followingOrganizerIds": followingIDs})
}

// BecomeOrganizer switches the caller's account type
func (h *UserHandler) BecomeOrganizer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.UserType = "organizer"
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, buildUserProfile(h.db, &user))
}

// UploadAvatar stores a new avatar and replaces the old one
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	url, err := h.store.SaveAvatar(file, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	if user.AvatarURL != "" {
		h.store.DeleteAvatar(user.AvatarURL)
	}

	user.AvatarURL = url
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatarUrl": user.AvatarURL})
}
