package notification

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type tags one notification kind. Creation and rendering both switch
// exhaustively on it.
type Type string

const (
	TypeLike    Type = "like"
	TypeComment Type = "comment"
	TypeReply   Type = "reply"
	TypeFollow  Type = "follow"
	TypeMessage Type = "message"
)

// GeneralTypes are the kinds surfaced on the notifications page; message
// notifications are tracked separately as unseen markers.
var GeneralTypes = []Type{TypeLike, TypeComment, TypeReply, TypeFollow}

// Valid reports whether t is a known tag.
func (t Type) Valid() bool {
	switch t {
	case TypeLike, TypeComment, TypeReply, TypeFollow, TypeMessage:
		return true
	}
	return false
}

// SourceRef points at the entity that triggered a notification.
type SourceRef struct {
	Type Type
	ID   uuid.UUID
}

// Notification represents the notifications table. Exactly one of the
// source columns is set, selected by Type. Seen stays null until the
// recipient bulk-marks the row; rows are deleted when their source entity
// is removed.
type Notification struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	ActorID   uuid.UUID     `gorm:"type:uuid;not null"`
	Type      Type          `gorm:"not null;index"`
	LikeID    uuid.NullUUID `gorm:"type:uuid;index"`
	CommentID uuid.NullUUID `gorm:"type:uuid;index"`
	FollowID  uuid.NullUUID `gorm:"type:uuid;index"`
	MessageID uuid.NullUUID `gorm:"type:uuid;index"`
	Seen      sql.NullTime
	CreatedAt time.Time
}

func (Notification) TableName() string {
	return "notifications"
}

// New builds a notification row from a source reference.
func New(recipient, actor uuid.UUID, ref SourceRef) (Notification, error) {
	n := Notification{
		ID:        uuid.New(),
		UserID:    recipient,
		ActorID:   actor,
		Type:      ref.Type,
		CreatedAt: time.Now(),
	}
	src := uuid.NullUUID{UUID: ref.ID, Valid: true}
	switch ref.Type {
	case TypeLike:
		n.LikeID = src
	case TypeComment, TypeReply:
		n.CommentID = src
	case TypeFollow:
		n.FollowID = src
	case TypeMessage:
		n.MessageID = src
	default:
		return Notification{}, fmt.Errorf("unknown notification type %q", ref.Type)
	}
	return n, nil
}

// Source returns the reference this notification points at.
func (n Notification) Source() SourceRef {
	switch n.Type {
	case TypeLike:
		return SourceRef{Type: TypeLike, ID: n.LikeID.UUID}
	case TypeComment, TypeReply:
		return SourceRef{Type: n.Type, ID: n.CommentID.UUID}
	case TypeFollow:
		return SourceRef{Type: TypeFollow, ID: n.FollowID.UUID}
	case TypeMessage:
		return SourceRef{Type: TypeMessage, ID: n.MessageID.UUID}
	}
	return SourceRef{}
}
