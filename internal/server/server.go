package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Qoziwe/EventummMobile/internal/config"
	"github.com/Qoziwe/EventummMobile/internal/database"
	"github.com/Qoziwe/EventummMobile/internal/handlers"
	"github.com/Qoziwe/EventummMobile/internal/middleware"
	"github.com/Qoziwe/EventummMobile/internal/notify"
	"github.com/Qoziwe/EventummMobile/internal/realtime"
	"github.com/Qoziwe/EventummMobile/internal/uploads"
)

type Server struct {
	db        database.Service
	hub       *realtime.Hub
	handler   *handlers.Handler
	store     *uploads.Store
	jwtSecret string
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	cfg := config.Load()

	// Initialize database
	db := database.New(cfg)

	// Realtime hub and in-process event bus
	hub := realtime.NewHub()
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))

	// Fan-out worker consumes event publications off the bus
	fanout := notify.NewService(db.GetDB(), hub)
	if err := fanout.Run(context.Background(), bus); err != nil {
		log.Fatalf("Failed to start notification fan-out: %v", err)
	}

	store, err := uploads.NewStore(cfg.UploadRoot)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	// Create unified handler
	handler := handlers.NewHandler(db.GetDB(), hub, bus, store, cfg.JWTSecret)

	// Create server instance
	newServer := &Server{
		db:        db,
		hub:       hub,
		handler:   handler,
		store:     store,
		jwtSecret: cfg.JWTSecret,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", cfg.Port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Realtime channel endpoint
	r.GET("/ws", func(c *gin.Context) {
		realtime.ServeWS(s.hub, c.Writer, c.Request)
	})

	// Uploaded images
	r.Static("/uploads", s.store.Root())

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		// Event routes (public reads)
		api.GET("/events", s.handler.Event.GetEvents)

		// View registration works for anonymous viewers too
		api.POST("/events/:id/view", middleware.OptionalAuth(s.jwtSecret), s.handler.Event.RegisterView)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(s.jwtSecret))
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			// User routes
			protected.PUT("/user/profile", s.handler.User.UpdateProfile)
			protected.POST("/user/interests", s.handler.User.UpdateInterests)
			protected.POST("/user/favorite", s.handler.User.ToggleFavorite)
			protected.POST("/user/follow", s.handler.User.ToggleFollow)
			protected.POST("/user/become-organizer", s.handler.User.BecomeOrganizer)
			protected.POST("/user/upload-avatar", s.handler.User.UploadAvatar)

			// Event routes
			protected.POST("/events", s.handler.Event.CreateEvent)
			protected.PUT("/events/:id", s.handler.Event.UpdateEvent)
			protected.DELETE("/events/:id", s.handler.Event.DeleteEvent)
			protected.POST("/events/upload-image", s.handler.Event.UploadImage)

			// Post routes
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			// Notification routes
			protected.GET("/notifications", s.handler.Notification.GetNotifications)
			protected.PUT("/notifications/read", s.handler.Notification.MarkRead)

			// Ticket routes
			protected.POST("/tickets/buy", s.handler.Ticket.BuyTicket)
			protected.GET("/tickets/my", s.handler.Ticket.GetMyTickets)
		}
	}

	return r
}
