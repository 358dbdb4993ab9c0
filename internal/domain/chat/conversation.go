package chat

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table.
// A direct conversation has no creator and no title; its PairKey is the
// sorted participant pair and carries a unique index so concurrent
// find-or-create calls cannot produce duplicates.
type Conversation struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CreatorID uuid.NullUUID `gorm:"type:uuid"`
	Title     sql.NullString
	PairKey   sql.NullString `gorm:"uniqueIndex"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Participants []Participant
}

// Participant represents the conversation_participants table
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	JoinedAt       time.Time
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "conversation_participants"
}

// IsDirect reports whether the conversation is a creator-less 1:1 thread.
func (c Conversation) IsDirect() bool {
	return !c.CreatorID.Valid && !c.Title.Valid
}

// HasParticipant reports whether userID is a member.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// DirectPairKey builds the deterministic lookup key for a 1:1 conversation.
func DirectPairKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}
