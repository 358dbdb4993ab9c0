package services_test

import (
	"context"
	"testing"
	"time"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/events"
	"mingle-server/internal/services"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type messageFixture struct {
	convRepo    *MockConversationRepo
	messageRepo *MockMessageRepo
	unseenRepo  *MockUnseenRepo
	userRepo    *MockUserRepo
	bus         *recordingBus
	svc         *services.MessageService
}

func newMessageFixture() *messageFixture {
	f := &messageFixture{
		convRepo:    new(MockConversationRepo),
		messageRepo: new(MockMessageRepo),
		unseenRepo:  new(MockUnseenRepo),
		userRepo:    new(MockUserRepo),
		bus:         &recordingBus{},
	}
	unseen := services.NewUnseenService(f.unseenRepo)
	f.svc = services.NewMessageService(f.convRepo, f.messageRepo, f.userRepo, unseen, f.bus, logger.NewNop())
	return f
}

func TestAppendRequiresContent(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Append(context.Background(), uuid.New(), uuid.New(), "", nil)

	assert.ErrorIs(t, err, mingle_errors.ErrInvalidInput)
	f.convRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAppendUnknownConversation(t *testing.T) {
	f := newMessageFixture()
	conversationID := uuid.New()
	f.convRepo.On("GetByID", mock.Anything, conversationID).Return(chat.Conversation{}, mingle_errors.ErrNotFound)

	_, err := f.svc.Append(context.Background(), conversationID, uuid.New(), "hi", nil)

	assert.ErrorIs(t, err, mingle_errors.ErrNotFound)
}

func TestAppendSenderMustBeParticipant(t *testing.T) {
	f := newMessageFixture()
	conv := groupConversation(uuid.New(), uuid.New())
	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	_, err := f.svc.Append(context.Background(), conv.ID, uuid.New(), "hi", nil)

	assert.ErrorIs(t, err, mingle_errors.ErrForbidden)
	f.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAppendFansOutMarkersToOthers(t *testing.T) {
	f := newMessageFixture()
	sender, second, third := uuid.New(), uuid.New(), uuid.New()
	conv := groupConversation(sender, second, third)

	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)
	f.convRepo.On("Touch", mock.Anything, conv.ID).Return(nil)
	f.messageRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	var markers []chat.UnseenMarker
	f.unseenRepo.On("CreateBatch", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			markers = args.Get(1).([]chat.UnseenMarker)
		}).
		Return(nil)

	msg, err := f.svc.Append(context.Background(), conv.ID, sender, "lunch?", nil)

	require.NoError(t, err)
	require.Len(t, markers, 2)
	marked := map[uuid.UUID]bool{}
	for _, m := range markers {
		assert.Equal(t, msg.ID, m.MessageID)
		assert.Equal(t, conv.ID, m.ConversationID)
		marked[m.UserID] = true
	}
	assert.True(t, marked[second])
	assert.True(t, marked[third])
	assert.False(t, marked[sender], "the sender never gets a marker for their own message")

	published := f.bus.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventMessage, published[0].Name)
	assert.Nil(t, published[0].UserID)
}

func TestAppendMarkerFailureDoesNotFailSend(t *testing.T) {
	f := newMessageFixture()
	sender, other := uuid.New(), uuid.New()
	conv := groupConversation(sender, other)

	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)
	f.convRepo.On("Touch", mock.Anything, conv.ID).Return(nil)
	f.messageRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.unseenRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := f.svc.Append(context.Background(), conv.ID, sender, "hello", nil)

	assert.NoError(t, err)
}

func TestAppendStoresFiles(t *testing.T) {
	f := newMessageFixture()
	sender, other := uuid.New(), uuid.New()
	conv := groupConversation(sender, other)

	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)
	f.convRepo.On("Touch", mock.Anything, conv.ID).Return(nil)
	f.unseenRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	var stored chat.Message
	f.messageRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = *args.Get(1).(*chat.Message)
		}).
		Return(nil)

	files := []services.FilePointer{{URL: "https://cdn.example.com/a.jpg", Kind: "image"}}
	_, err := f.svc.Append(context.Background(), conv.ID, sender, "", files)

	require.NoError(t, err)
	assert.False(t, stored.Text.Valid)
	require.Len(t, stored.Files, 1)
	assert.Equal(t, "image", stored.Files[0].Kind)
	assert.Equal(t, stored.ID, stored.Files[0].MessageID)
}

func TestListForConversationSeenFlags(t *testing.T) {
	f := newMessageFixture()
	me, friend := uuid.New(), uuid.New()
	conv := directConversation(me, friend)

	seenMsg := chat.Message{ID: uuid.New(), ConversationID: conv.ID, SenderID: friend, CreatedAt: time.Now().Add(-time.Minute)}
	pendingMsg := chat.Message{ID: uuid.New(), ConversationID: conv.ID, SenderID: friend, CreatedAt: time.Now()}

	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)
	f.messageRepo.On("GetConversationMessages", mock.Anything, conv.ID).
		Return([]chat.Message{seenMsg, pendingMsg}, nil)
	f.unseenRepo.On("PendingMessageIDs", mock.Anything, me, conv.ID).
		Return([]uuid.UUID{pendingMsg.ID}, nil)
	f.userRepo.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]user.User{{ID: friend, FirstName: "Finn"}}, nil)

	views, err := f.svc.ListForConversation(context.Background(), conv.ID, me)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].Seen)
	assert.False(t, views[1].Seen)
	assert.Equal(t, "Finn", views[1].Sender.FirstName)
}

func TestListForConversationRequiresMembership(t *testing.T) {
	f := newMessageFixture()
	conv := directConversation(uuid.New(), uuid.New())
	f.convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	_, err := f.svc.ListForConversation(context.Background(), conv.ID, uuid.New())

	assert.ErrorIs(t, err, mingle_errors.ErrForbidden)
}
