package repository

import (
	"context"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/notification"
	"mingle-server/internal/domain/social"
	"mingle-server/internal/domain/user"

	"github.com/google/uuid"
)

type ConversationRepository interface {
	Create(ctx context.Context, c *chat.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error)
	GetByPairKey(ctx context.Context, key string) (chat.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error)
	AddParticipant(ctx context.Context, p chat.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	Touch(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *chat.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]chat.Message, error)
	GetLastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]chat.Message, error)
}

type UnseenRepository interface {
	CreateBatch(ctx context.Context, markers []chat.UnseenMarker) error
	DeleteForUser(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error
	PendingMessageIDs(ctx context.Context, userID, conversationID uuid.UUID) ([]uuid.UUID, error)
	CountByConversation(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	MarkSeen(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	DeleteBySources(ctx context.Context, refs []notification.SourceRef) error
	ListGeneral(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error)
	CountUnseenGeneral(ctx context.Context, userID uuid.UUID) (int64, error)
}

type SocialRepository interface {
	GetPost(ctx context.Context, id uuid.UUID) (social.Post, error)
	CreateLike(ctx context.Context, l *social.Like) error
	GetLike(ctx context.Context, postID, userID uuid.UUID) (social.Like, error)
	DeleteLike(ctx context.Context, id uuid.UUID) error
	CreateComment(ctx context.Context, c *social.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (social.Comment, error)
	GetReplyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error)
	DeleteComments(ctx context.Context, ids []uuid.UUID) error
	CreateFollow(ctx context.Context, f *social.Follow) error
	GetFollow(ctx context.Context, followerID, followingID uuid.UUID) (social.Follow, error)
	DeleteFollow(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
}
