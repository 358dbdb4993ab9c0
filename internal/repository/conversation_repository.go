package repository

import (
	"context"
	"errors"
	"time"

	"mingle-server/internal/domain/chat"
	mingle_errors "mingle-server/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *chat.Conversation) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return mingle_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, mingle_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByPairKey(ctx context.Context, key string) (chat.Conversation, error) {
	var c chat.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("pair_key = ?", key).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chat.Conversation{}, mingle_errors.ErrNotFound
		}
		return chat.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error) {
	var conversations []chat.Conversation

	subQuery := r.db.Model(&chat.Participant{}).
		Select("conversation_id").
		Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", subQuery).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) AddParticipant(ctx context.Context, p chat.Participant) error {
	res := r.db.WithContext(ctx).Create(&p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return mingle_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Delete(&chat.Participant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return mingle_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) Touch(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&chat.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}
