package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/metrics"
	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/models"
	"github.com/Qoziwe/EventummMobile/internal/realtime"
	"github.com/Qoziwe/EventummMobile/internal/votes"
)

type PostHandler struct {
	db     *gorm.DB
	hub    *realtime.Hub
	ledger *votes.Ledger
}

func NewPostHandler(db *gorm.DB, hub *realtime.Hub) *PostHandler {
	return &PostHandler{db: db, hub: hub, ledger: votes.NewLedger(db)}
}

// CreatePost creates a new community post (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
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

	var input models.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		CategorySlug: input.CategorySlug,
		CategoryName: input.CategoryName,
		AuthorID:     user.ID,
		AuthorName:   user.Name,
		Content:      input.Content,
		AgeLimit:     input.AgeLimit,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": post.ID})
}

// GetPosts returns all posts, newest first, with voter maps
func (h *PostHandler) GetPosts(c *gin.Context) {
	var posts []models.Post
	if err := h.db.Preload("Votes").Order("timestamp desc").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	responses := make([]gin.H, 0, len(posts))
	for i := range posts {
		post := &posts[i]

		votedUsers := make(map[string]string, len(post.Votes))
		for _, v := range post.Votes {
			votedUsers[v.UserID] = v.VoteType
		}

		var commentCount int64
		h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		responses = append(responses, gin.H{
			"id":           post.ID,
			"categorySlug": post.CategorySlug,
			"categoryName": post.CategoryName,
			"authorId":     post.AuthorID,
			"authorName":   post.AuthorName,
			"content":      post.Content,
			"upvotes":      post.Upvotes,
			"downvotes":    post.Downvotes,
			"ageLimit":     post.AgeLimit,
			"timestamp":    post.Timestamp,
			"commentCount": commentCount,
			"votedUsers":   votedUsers,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// VotePost casts, switches or toggles off a vote, then broadcasts the
// committed state to the post's topic (PROTECTED - requires authentication)
func (h *PostHandler) VotePost(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	postID := c.Param("id")

	var input struct {
		Type string `json:"type" binding:"required,oneof=up down"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be up or down"})
		return
	}

	result, err := h.ledger.Cast(c.Request.Context(), postID, userID, input.Type)
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if errors.Is(err, apperr.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be up or down"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}

	metrics.VotesCast.Inc()

	h.hub.Publish(realtime.PostTopic(postID), "vote_update", gin.H{
		"postId":     postID,
		"upvotes":    result.Upvotes,
		"downvotes":  result.Downvotes,
		"votedUsers": result.VotedUsers,
	})

	c.JSON(http.StatusOK, gin.H{"upvotes": result.Upvotes, "downvotes": result.Downvotes})
}
