package repository

import (
	"context"
	"time"

	"mingle-server/internal/domain/notification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// MarkSeen sets the seen timestamp on the given rows, scoped to the owner so
// a user cannot mark another user's notifications.
func (r *PostgresNotificationRepository) MarkSeen(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("user_id = ? AND id IN ? AND seen IS NULL", userID, ids).
		Update("seen", time.Now()).Error
}

func (r *PostgresNotificationRepository) DeleteBySources(ctx context.Context, refs []notification.SourceRef) error {
	if len(refs) == 0 {
		return nil
	}

	var likeIDs, commentIDs, followIDs, messageIDs []uuid.UUID
	for _, ref := range refs {
		switch ref.Type {
		case notification.TypeLike:
			likeIDs = append(likeIDs, ref.ID)
		case notification.TypeComment, notification.TypeReply:
			commentIDs = append(commentIDs, ref.ID)
		case notification.TypeFollow:
			followIDs = append(followIDs, ref.ID)
		case notification.TypeMessage:
			messageIDs = append(messageIDs, ref.ID)
		}
	}

	q := r.db.WithContext(ctx).Where("1 = 0")
	if len(likeIDs) > 0 {
		q = q.Or("like_id IN ?", likeIDs)
	}
	if len(commentIDs) > 0 {
		q = q.Or("comment_id IN ?", commentIDs)
	}
	if len(followIDs) > 0 {
		q = q.Or("follow_id IN ?", followIDs)
	}
	if len(messageIDs) > 0 {
		q = q.Or("message_id IN ?", messageIDs)
	}
	return q.Delete(&notification.Notification{}).Error
}

func (r *PostgresNotificationRepository) ListGeneral(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	var notifications []notification.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type IN ?", userID, notification.GeneralTypes).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *PostgresNotificationRepository) CountUnseenGeneral(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notification.Notification{}).
		Where("user_id = ? AND type IN ? AND seen IS NULL", userID, notification.GeneralTypes).
		Count(&count).Error
	return count, err
}
