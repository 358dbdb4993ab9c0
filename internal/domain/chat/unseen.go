package chat

import (
	"time"

	"github.com/google/uuid"
)

// UnseenMarker represents the unseen_markers table: one row per recipient per
// message not yet acknowledged. Acknowledgment deletes the row.
// ConversationID is denormalized so conversation-level badge counts are a
// plain group-by instead of a join through messages.
type UnseenMarker struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unseen_user_message"`
	MessageID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unseen_user_message"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time
}

func (UnseenMarker) TableName() string {
	return "unseen_markers"
}
