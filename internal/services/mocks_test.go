package services_test

import (
	"context"
	"sync"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/notification"
	"mingle-server/internal/domain/social"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockConversationRepo is a testify mock of repository.ConversationRepository.
type MockConversationRepo struct {
	mock.Mock
}

func (m *MockConversationRepo) Create(ctx context.Context, c *chat.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chat.Conversation), args.Error(1)
}

func (m *MockConversationRepo) GetByPairKey(ctx context.Context, key string) (chat.Conversation, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(chat.Conversation), args.Error(1)
}

func (m *MockConversationRepo) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]chat.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.Conversation), args.Error(1)
}

func (m *MockConversationRepo) AddParticipant(ctx context.Context, p chat.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockConversationRepo) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

func (m *MockConversationRepo) Touch(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMessageRepo is a testify mock of repository.MessageRepository.
type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *chat.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (chat.Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(chat.Message), args.Error(1)
}

func (m *MockMessageRepo) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]chat.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]chat.Message), args.Error(1)
}

func (m *MockMessageRepo) GetLastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]chat.Message, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]chat.Message), args.Error(1)
}

// MockUnseenRepo is a testify mock of repository.UnseenRepository.
type MockUnseenRepo struct {
	mock.Mock
}

func (m *MockUnseenRepo) CreateBatch(ctx context.Context, markers []chat.UnseenMarker) error {
	args := m.Called(ctx, markers)
	return args.Error(0)
}

func (m *MockUnseenRepo) DeleteForUser(ctx context.Context, userID uuid.UUID, messageIDs []uuid.UUID) error {
	args := m.Called(ctx, userID, messageIDs)
	return args.Error(0)
}

func (m *MockUnseenRepo) PendingMessageIDs(ctx context.Context, userID, conversationID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUnseenRepo) CountByConversation(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

// MockNotificationRepo is a testify mock of repository.NotificationRepository.
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepo) MarkSeen(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	args := m.Called(ctx, userID, ids)
	return args.Error(0)
}

func (m *MockNotificationRepo) DeleteBySources(ctx context.Context, refs []notification.SourceRef) error {
	args := m.Called(ctx, refs)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListGeneral(ctx context.Context, userID uuid.UUID) ([]notification.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *MockNotificationRepo) CountUnseenGeneral(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockSocialRepo is a testify mock of repository.SocialRepository.
type MockSocialRepo struct {
	mock.Mock
}

func (m *MockSocialRepo) GetPost(ctx context.Context, id uuid.UUID) (social.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(social.Post), args.Error(1)
}

func (m *MockSocialRepo) CreateLike(ctx context.Context, l *social.Like) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockSocialRepo) GetLike(ctx context.Context, postID, userID uuid.UUID) (social.Like, error) {
	args := m.Called(ctx, postID, userID)
	return args.Get(0).(social.Like), args.Error(1)
}

func (m *MockSocialRepo) DeleteLike(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSocialRepo) CreateComment(ctx context.Context, c *social.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockSocialRepo) GetComment(ctx context.Context, id uuid.UUID) (social.Comment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(social.Comment), args.Error(1)
}

func (m *MockSocialRepo) GetReplyIDs(ctx context.Context, parentIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, parentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockSocialRepo) DeleteComments(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *MockSocialRepo) CreateFollow(ctx context.Context, f *social.Follow) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockSocialRepo) GetFollow(ctx context.Context, followerID, followingID uuid.UUID) (social.Follow, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Get(0).(social.Follow), args.Error(1)
}

func (m *MockSocialRepo) DeleteFollow(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepo is a testify mock of repository.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

// recordedEvent is one call captured by recordingBus.
type recordedEvent struct {
	Name    string
	UserID  *uuid.UUID
	Payload any
}

// recordingBus implements events.Bus by remembering every publish.
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

var _ events.Bus = (*recordingBus)(nil)

func (b *recordingBus) Publish(ctx context.Context, name string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Name: name, Payload: payload})
	return nil
}

func (b *recordingBus) PublishToUser(ctx context.Context, userID uuid.UUID, name string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Name: name, UserID: &userID, Payload: payload})
	return nil
}

func (b *recordingBus) Events() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedEvent, len(b.events))
	copy(out, b.events)
	return out
}
