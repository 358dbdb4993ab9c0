package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mingle-server/internal/auth"
	"mingle-server/internal/config"
	"mingle-server/internal/handler"
	"mingle-server/internal/middleware"
	"mingle-server/internal/transport/httpdto"
	"mingle-server/pkg/logger"

	"github.com/gin-gonic/gin"
)

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

type Handlers struct {
	Chat          *handler.ChatHandler
	Notifications *handler.NotificationHandler
	Social        *handler.SocialHandler
	WebSocket     *WebSocketHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Environment == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Environment == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, verifier *auth.TokenVerifier, healthCheck func() error) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if healthCheck != nil {
			if err := healthCheck(); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authRequired := middleware.AuthMiddleware(verifier)

	api := s.engine.Group("/api", authRequired)
	{
		chat := api.Group("/chat")
		{
			chat.GET("/conversations", handlers.Chat.ListConversations)
			chat.GET("/conversations/:conversationId", handlers.Chat.ListMessages)
			chat.POST("", handlers.Chat.CreateGroup)
			chat.POST("/direct/:userId", handlers.Chat.FindOrCreateDirect)
			chat.POST("/:conversationId", handlers.Chat.SendMessage)
			chat.GET("/members/:conversationId", handlers.Chat.Members)
			chat.POST("/members/:conversationId/:userId", handlers.Chat.AddMember)
			chat.DELETE("/members/:conversationId/:userId", handlers.Chat.RemoveMember)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("/general", handlers.Notifications.ListGeneral)
			notifications.GET("/general/count", handlers.Notifications.CountGeneral)
			notifications.PUT("/seen", handlers.Notifications.MarkSeen)
			notifications.GET("/chat", handlers.Notifications.UnseenChat)
			notifications.PUT("/chat", handlers.Notifications.AcknowledgeChat)
		}

		likes := api.Group("/likes")
		{
			likes.POST("/:postId", handlers.Social.Like)
			likes.DELETE("/:postId", handlers.Social.Unlike)
		}

		comments := api.Group("/comments")
		{
			comments.POST("/:postId", handlers.Social.Comment)
			comments.DELETE("/:commentId", handlers.Social.DeleteComment)
		}

		follow := api.Group("/follow")
		{
			follow.POST("/:userId", handlers.Social.Follow)
			follow.DELETE("/:userId", handlers.Social.Unfollow)
		}
	}

	// token checked inside the handler so browsers can pass it as a query param
	s.engine.GET("/ws", handlers.WebSocket.Handle)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
