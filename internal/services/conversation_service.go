package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/repository"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
)

type ConversationService struct {
	repo        repository.ConversationRepository
	messageRepo repository.MessageRepository
	unseenRepo  repository.UnseenRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
}

func NewConversationService(
	repo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	unseenRepo repository.UnseenRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *ConversationService {
	return &ConversationService{
		repo:        repo,
		messageRepo: messageRepo,
		unseenRepo:  unseenRepo,
		userRepo:    userRepo,
		log:         log,
	}
}

// ConversationSummary is one row of the conversation list view.
type ConversationSummary struct {
	Conversation chat.Conversation
	Participants []user.User
	LastMessage  *MessageView
	UnseenCount  int64
}

// FindOrCreateDirect returns the unique creator-less conversation between the
// two users, creating it on first contact. Concurrent creation from both
// ends is resolved by the unique pair-key index: the loser re-reads.
func (s *ConversationService) FindOrCreateDirect(ctx context.Context, a, b uuid.UUID) (chat.Conversation, error) {
	if a == b {
		return chat.Conversation{}, mingle_errors.ErrInvalidInput
	}

	key := chat.DirectPairKey(a, b)
	conv, err := s.repo.GetByPairKey(ctx, key)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, mingle_errors.ErrNotFound) {
		return chat.Conversation{}, err
	}

	now := time.Now()
	conv = chat.Conversation{
		ID:        uuid.New(),
		PairKey:   sql.NullString{String: key, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []chat.Participant{
			{UserID: a, JoinedAt: now},
			{UserID: b, JoinedAt: now},
		},
	}
	for i := range conv.Participants {
		conv.Participants[i].ConversationID = conv.ID
	}

	if err := s.repo.Create(ctx, &conv); err != nil {
		if errors.Is(err, mingle_errors.ErrAlreadyExists) {
			return s.repo.GetByPairKey(ctx, key)
		}
		return chat.Conversation{}, err
	}
	return conv, nil
}

// CreateGroup creates a titled conversation owned by the creator. The
// creator is always a participant; duplicates are dropped.
func (s *ConversationService) CreateGroup(ctx context.Context, creatorID uuid.UUID, participantIDs []uuid.UUID, title string) (chat.Conversation, error) {
	now := time.Now()
	conv := chat.Conversation{
		ID:        uuid.New(),
		CreatorID: uuid.NullUUID{UUID: creatorID, Valid: true},
		Title:     sql.NullString{String: title, Valid: title != ""},
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := map[uuid.UUID]bool{creatorID: true}
	conv.Participants = append(conv.Participants, chat.Participant{
		ConversationID: conv.ID,
		UserID:         creatorID,
		JoinedAt:       now,
	})
	for _, id := range participantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		conv.Participants = append(conv.Participants, chat.Participant{
			ConversationID: conv.ID,
			UserID:         id,
			JoinedAt:       now,
		})
	}

	if err := s.repo.Create(ctx, &conv); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

func (s *ConversationService) GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	return s.repo.GetByID(ctx, id)
}

// AddParticipant is a creator-only operation.
func (s *ConversationService) AddParticipant(ctx context.Context, conversationID, actorID, newUserID uuid.UUID) error {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.CreatorID.Valid || conv.CreatorID.UUID != actorID {
		return mingle_errors.ErrForbidden
	}
	if conv.HasParticipant(newUserID) {
		return nil
	}
	return s.repo.AddParticipant(ctx, chat.Participant{
		ConversationID: conversationID,
		UserID:         newUserID,
		JoinedAt:       time.Now(),
	})
}

// RemoveParticipant is a creator-only operation. The creator cannot remove
// themselves; a group without its owner has no one able to manage it.
func (s *ConversationService) RemoveParticipant(ctx context.Context, conversationID, actorID, userID uuid.UUID) error {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.CreatorID.Valid || conv.CreatorID.UUID != actorID {
		return mingle_errors.ErrForbidden
	}
	if userID == conv.CreatorID.UUID {
		return mingle_errors.ErrInvalidInput
	}
	return s.repo.RemoveParticipant(ctx, conversationID, userID)
}

// Members returns the participant profiles and the creator id for the
// membership view.
func (s *ConversationService) Members(ctx context.Context, conversationID, requesterID uuid.UUID) (chat.Conversation, []user.User, error) {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return chat.Conversation{}, nil, err
	}
	if !conv.HasParticipant(requesterID) {
		return chat.Conversation{}, nil, mingle_errors.ErrForbidden
	}
	profiles, err := s.userRepo.GetByIDs(ctx, participantIDs(conv))
	if err != nil {
		return chat.Conversation{}, nil, err
	}
	return conv, profiles, nil
}

// ListForUser returns every conversation the user belongs to, decorated with
// participant profiles, the newest message and the user's unseen count,
// newest activity first. Conversations without messages sort by creation
// time so fresh groups are visible immediately.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	conversations, err := s.repo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return []ConversationSummary{}, nil
	}

	convIDs := make([]uuid.UUID, 0, len(conversations))
	for _, c := range conversations {
		convIDs = append(convIDs, c.ID)
	}

	lastMessages, err := s.messageRepo.GetLastMessages(ctx, convIDs)
	if err != nil {
		return nil, err
	}
	unseenCounts, err := s.unseenRepo.CountByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.loadProfiles(ctx, conversations, lastMessages)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, c := range conversations {
		summary := ConversationSummary{
			Conversation: c,
			UnseenCount:  unseenCounts[c.ID],
		}
		for _, p := range c.Participants {
			if u, ok := profiles[p.UserID]; ok {
				summary.Participants = append(summary.Participants, u)
			}
		}
		if last, ok := lastMessages[c.ID]; ok {
			view := MessageView{Message: last, Sender: profiles[last.SenderID]}
			summary.LastMessage = &view
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return activityTime(summaries[i]).After(activityTime(summaries[j]))
	})
	return summaries, nil
}

func activityTime(s ConversationSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.Message.CreatedAt
	}
	return s.Conversation.CreatedAt
}

func (s *ConversationService) loadProfiles(ctx context.Context, conversations []chat.Conversation, lastMessages map[uuid.UUID]chat.Message) (map[uuid.UUID]user.User, error) {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, c := range conversations {
		for _, p := range c.Participants {
			if !seen[p.UserID] {
				seen[p.UserID] = true
				ids = append(ids, p.UserID)
			}
		}
	}
	for _, m := range lastMessages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			ids = append(ids, m.SenderID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[uuid.UUID]user.User, len(users))
	for _, u := range users {
		profiles[u.ID] = u
	}
	return profiles, nil
}

func participantIDs(c chat.Conversation) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
