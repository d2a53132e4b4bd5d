package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/realtime"
)

type CommentHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewCommentHandler(db *gorm.DB, hub *realtime.Hub) *CommentHandler {
	return &CommentHandler{db: db, hub: hub}
}

// GetComments returns all comments for a post; the client materializes
// the tree from parentId
func (h *CommentHandler) GetComments(c *gin.Context) {
	var comments []models.Comment
	if err := h.db.Where("post_id = ?", c.Param("id")).Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment adds a comment and broadcasts it to the post's topic
// (PROTECTED - requires authentication)
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	postID := c.Param("id")
	var post models.Post
	if err := h.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		PostID:     post.ID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Content:    input.Content,
		ParentID:   input.ParentID,
		Depth:      input.Depth, // stored as the client sent it
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.hub.Publish(realtime.PostTopic(post.ID), "new_comment", comment)

	c.JSON(http.StatusCreated, comment)
}
