package main

import (
	"context"
	"fmt"
	"log"

	"mingle-server/internal/auth"
	"mingle-server/internal/config"
	"mingle-server/internal/events"
	"mingle-server/internal/handler"
	"mingle-server/internal/repository"
	"mingle-server/internal/rtc"
	"mingle-server/internal/server"
	"mingle-server/internal/services"
	"mingle-server/internal/storage"
	"mingle-server/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logMode := logger.DevelopmentMode
	if cfg.Server.Environment == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	defer l.Sync()

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		l.Errorf("Failed to connect to database: %s", err)
		return
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		l.Errorf("Failed to connect to redis: %s", err)
		return
	}

	hub := server.NewHub(l)
	go hub.Run()
	defer hub.Stop()

	bus := events.NewRedisBus(redisClient, l)
	busCtx, stopBus := context.WithCancel(context.Background())
	defer stopBus()
	bus.Subscribe(busCtx, hub)

	var store services.ObjectStore
	if cfg.Media.Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.Media.Region,
			Bucket:     cfg.Media.Bucket,
			AccessKey:  cfg.Media.AccessKey,
			SecretKey:  cfg.Media.SecretKey,
			Endpoint:   cfg.Media.Endpoint,
			PublicBase: cfg.Media.PublicBase,
		})
		if err != nil {
			l.Errorf("Failed to initialize object storage: %s", err)
			return
		}
		store = s3Client
	} else {
		l.Warnf("Object storage not configured, file uploads disabled")
	}

	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	unseenRepo := repository.NewUnseenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	socialRepo := repository.NewSocialRepository(db)
	userRepo := repository.NewUserRepository(db)

	unseenService := services.NewUnseenService(unseenRepo)
	conversationService := services.NewConversationService(convRepo, messageRepo, unseenRepo, userRepo, l)
	messageService := services.NewMessageService(convRepo, messageRepo, userRepo, unseenService, bus, l)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, bus, l)
	socialService := services.NewSocialService(socialRepo, notificationService, l)
	mediaService := services.NewMediaService(store)

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)
	relay := rtc.NewRelay(cfg.RTC.STUNServer, l)

	handlers := &server.Handlers{
		Chat:          handler.NewChatHandler(conversationService, messageService, mediaService),
		Notifications: handler.NewNotificationHandler(notificationService, unseenService),
		Social:        handler.NewSocialHandler(socialService),
		WebSocket:     server.NewWebSocketHandler(hub, relay, verifier, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, verifier, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}
		return redisClient.Ping(context.Background()).Err()
	})

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %s", err)
	}
}
