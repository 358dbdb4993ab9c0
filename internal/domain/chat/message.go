package chat

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// File kinds stored per attachment, derived from the uploaded content type.
const (
	FileKindImage = "image"
	FileKindVideo = "video"
	FileKindAudio = "audio"
	FileKindRaw   = "raw"
)

// Message represents the messages table. Messages are immutable once created.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Text           sql.NullString
	CreatedAt      time.Time `gorm:"index:idx_messages_conversation_created"`

	Files []MessageFile
}

// MessageFile represents the message_files table. Upload itself is delegated
// to object storage; only the resulting URL and resource kind are kept.
type MessageFile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"not null"`
	Kind      string    `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages"
}

func (MessageFile) TableName() string {
	return "message_files"
}
