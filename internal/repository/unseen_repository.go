package repository

import (
	"context"
	"errors"

	"mingle-server/internal/domain/chat"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUnseenRepository struct {
	db *gorm.DB
}

func NewUnseenRepository(db *gorm.DB) UnseenRepository {
	return &PostgresUnseenRepository{db: db}
}

// CreateBatch inserts one marker per recipient. Conflicting rows (marker
// already pending for the same user and message) are skipped, keeping the
// call safe to retry.
func (r *PostgresUnseenRepository) CreateBatch(ctx context.Context, markers []chat.UnseenMarker) error {
	if len(markers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&markers).Error
}

// DeleteForUser removes the user's markers among the given messages.
// Deleting already-cleared markers is a no-op.
func (r *PostgresUnseenRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id IN ?", userID, messageIDs).
		Delete(&chat.UnseenMarker{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (r *PostgresUnseenRepository) PendingMessageIDs(ctx context.Context, userID, conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&chat.UnseenMarker{}).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresUnseenRepository) CountByConversation(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		ConversationID uuid.UUID
		Count          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&chat.UnseenMarker{}).
		Select("conversation_id, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.ConversationID] = r.Count
	}
	return counts, nil
}
