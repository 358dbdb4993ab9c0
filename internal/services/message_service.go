package services

import (
	"context"
	"database/sql"
	"time"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/events"
	"mingle-server/internal/repository"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
)

type MessageService struct {
	convRepo    repository.ConversationRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	unseen      *UnseenService
	bus         events.Bus
	log         *logger.Logger
}

func NewMessageService(
	convRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	unseen *UnseenService,
	bus events.Bus,
	log *logger.Logger,
) *MessageService {
	return &MessageService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		unseen:      unseen,
		bus:         bus,
		log:         log,
	}
}

// FilePointer references an already-uploaded media file.
type FilePointer struct {
	URL  string
	Kind string
}

// MessageView is a message decorated for the requesting user.
type MessageView struct {
	Message chat.Message
	Sender  user.User
	Seen    bool
}

// Append creates a message in an existing conversation and fans out unseen
// markers to every other participant. The sender must be a participant and
// at least one of text/files must be present.
func (s *MessageService) Append(ctx context.Context, conversationID, senderID uuid.UUID, text string, files []FilePointer) (chat.Message, error) {
	if text == "" && len(files) == 0 {
		return chat.Message{}, mingle_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return chat.Message{}, err
	}
	if !conv.HasParticipant(senderID) {
		return chat.Message{}, mingle_errors.ErrForbidden
	}

	msg := chat.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           sql.NullString{String: text, Valid: text != ""},
		CreatedAt:      time.Now(),
	}
	for _, f := range files {
		msg.Files = append(msg.Files, chat.MessageFile{
			ID:        uuid.New(),
			MessageID: msg.ID,
			URL:       f.URL,
			Kind:      f.Kind,
		})
	}

	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return chat.Message{}, err
	}
	if err := s.convRepo.Touch(ctx, conversationID); err != nil {
		s.log.Warnf("touch conversation %s: %v", conversationID, err)
	}

	var recipients []uuid.UUID
	for _, p := range conv.Participants {
		if p.UserID != senderID {
			recipients = append(recipients, p.UserID)
		}
	}
	// The response does not depend on marker creation; a failure here only
	// costs a badge until the next message.
	if err := s.unseen.MarkPending(ctx, recipients, msg.ID, conversationID); err != nil {
		s.log.Errorf("unseen markers for message %s: %v", msg.ID, err)
	}

	if err := s.bus.Publish(ctx, events.EventMessage, nil); err != nil {
		s.log.Warnf("publish message event: %v", err)
	}
	return msg, nil
}

// ListForConversation returns the conversation's messages oldest first, each
// with the sender profile and whether the requester has seen it.
func (s *MessageService) ListForConversation(ctx context.Context, conversationID, requesterID uuid.UUID) ([]MessageView, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return nil, mingle_errors.ErrForbidden
	}

	messages, err := s.messageRepo.GetConversationMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	pending, err := s.unseen.PendingMessageIDs(ctx, requesterID, conversationID)
	if err != nil {
		return nil, err
	}
	unseen := make(map[uuid.UUID]bool, len(pending))
	for _, id := range pending {
		unseen[id] = true
	}

	senderIDs := make([]uuid.UUID, 0, len(messages))
	dedup := map[uuid.UUID]bool{}
	for _, m := range messages {
		if !dedup[m.SenderID] {
			dedup[m.SenderID] = true
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	senders, err := s.userRepo.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]user.User, len(senders))
	for _, u := range senders {
		profiles[u.ID] = u
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			Message: m,
			Sender:  profiles[m.SenderID],
			Seen:    !unseen[m.ID],
		})
	}
	return views, nil
}
