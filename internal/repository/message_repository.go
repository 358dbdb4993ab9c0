package repository

import (
	"context"
	"errors"

	"mingle-server/internal/domain/chat"
	mingle_errors "mingle-server/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *chat.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Message{}, mingle_errors.ErrNotFound
		}
		return chat.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]chat.Message, error) {
	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastMessages returns the newest message of each given conversation.
func (r *PostgresMessageRepository) GetLastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]chat.Message, error) {
	if len(conversationIDs) == 0 {
		return map[uuid.UUID]chat.Message{}, nil
	}

	var messages []chat.Message
	err := r.db.WithContext(ctx).
		Preload("Files").
		Where("id IN (?)", r.db.Model(&chat.Message{}).
			Select("DISTINCT ON (conversation_id) id").
			Where("conversation_id IN ?", conversationIDs).
			Order("conversation_id, created_at DESC")).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	last := make(map[uuid.UUID]chat.Message, len(messages))
	for _, m := range messages {
		last[m.ConversationID] = m
	}
	return last, nil
}
