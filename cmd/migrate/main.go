package main

import (
	"fmt"
	"log"

	"mingle-server/internal/config"
	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/notification"
	"mingle-server/internal/domain/social"
	"mingle-server/internal/domain/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&user.User{},
		&chat.Conversation{},
		&chat.Participant{},
		&chat.Message{},
		&chat.MessageFile{},
		&chat.UnseenMarker{},
		&notification.Notification{},
		&social.Post{},
		&social.Like{},
		&social.Comment{},
		&social.Follow{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	log.Println("Migrations applied")
}
