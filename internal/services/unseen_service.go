package services

import (
	"context"
	"time"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/repository"

	"github.com/google/uuid"
)

// UnseenService tracks which messages a recipient has not yet acknowledged.
// Markers are deleted on acknowledgment, never flagged.
type UnseenService struct {
	repo repository.UnseenRepository
}

func NewUnseenService(repo repository.UnseenRepository) *UnseenService {
	return &UnseenService{repo: repo}
}

// MarkPending inserts one marker per recipient for the message.
func (s *UnseenService) MarkPending(ctx context.Context, recipientIDs []uuid.UUID, messageID, conversationID uuid.UUID) error {
	markers := make([]chat.UnseenMarker, 0, len(recipientIDs))
	now := time.Now()
	for _, recipientID := range recipientIDs {
		markers = append(markers, chat.UnseenMarker{
			ID:             uuid.New(),
			UserID:         recipientID,
			MessageID:      messageID,
			ConversationID: conversationID,
			CreatedAt:      now,
		})
	}
	return s.repo.CreateBatch(ctx, markers)
}

// Acknowledge clears the recipient's markers for the given messages.
// Idempotent: already-cleared markers are a no-op.
func (s *UnseenService) Acknowledge(ctx context.Context, recipientID uuid.UUID, messageIDs []uuid.UUID) error {
	return s.repo.DeleteForUser(ctx, recipientID, messageIDs)
}

// UnseenConversations returns the ids of conversations holding at least one
// pending marker for the recipient, for the badge count.
func (s *UnseenService) UnseenConversations(ctx context.Context, recipientID uuid.UUID) ([]uuid.UUID, error) {
	counts, err := s.repo.CountByConversation(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	return ids, nil
}

// PendingMessageIDs returns the recipient's unacknowledged messages within a
// conversation; the message list view derives its seen flag from it.
func (s *UnseenService) PendingMessageIDs(ctx context.Context, recipientID, conversationID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.PendingMessageIDs(ctx, recipientID, conversationID)
}
