package services_test

import (
	"context"
	"testing"
	"time"

	"mingle-server/internal/domain/chat"
	"mingle-server/internal/domain/user"
	"mingle-server/internal/services"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConversationService(convRepo *MockConversationRepo, messageRepo *MockMessageRepo, unseenRepo *MockUnseenRepo, userRepo *MockUserRepo) *services.ConversationService {
	return services.NewConversationService(convRepo, messageRepo, unseenRepo, userRepo, logger.NewNop())
}

func directConversation(a, b uuid.UUID) chat.Conversation {
	conv := chat.Conversation{ID: uuid.New(), CreatedAt: time.Now()}
	conv.PairKey.String = chat.DirectPairKey(a, b)
	conv.PairKey.Valid = true
	conv.Participants = []chat.Participant{
		{ConversationID: conv.ID, UserID: a},
		{ConversationID: conv.ID, UserID: b},
	}
	return conv
}

func groupConversation(creator uuid.UUID, others ...uuid.UUID) chat.Conversation {
	conv := chat.Conversation{
		ID:        uuid.New(),
		CreatorID: uuid.NullUUID{UUID: creator, Valid: true},
		CreatedAt: time.Now(),
	}
	conv.Participants = []chat.Participant{{ConversationID: conv.ID, UserID: creator}}
	for _, id := range others {
		conv.Participants = append(conv.Participants, chat.Participant{ConversationID: conv.ID, UserID: id})
	}
	return conv
}

func TestFindOrCreateDirectReturnsExisting(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	existing := directConversation(a, b)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByPairKey", mock.Anything, chat.DirectPairKey(a, b)).Return(existing, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	got, err := svc.FindOrCreateDirect(context.Background(), a, b)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFindOrCreateDirectCreatesOnFirstContact(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	key := chat.DirectPairKey(a, b)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByPairKey", mock.Anything, key).Return(chat.Conversation{}, mingle_errors.ErrNotFound)

	var created chat.Conversation
	convRepo.On("Create", mock.Anything, mock.AnythingOfType("*chat.Conversation")).
		Run(func(args mock.Arguments) {
			created = *args.Get(1).(*chat.Conversation)
		}).
		Return(nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	got, err := svc.FindOrCreateDirect(context.Background(), a, b)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, created.CreatorID.Valid, "direct conversations have no creator")
	require.Len(t, created.Participants, 2)
	assert.True(t, created.HasParticipant(a))
	assert.True(t, created.HasParticipant(b))
	assert.Equal(t, key, created.PairKey.String)
}

func TestFindOrCreateDirectLosesCreationRace(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	key := chat.DirectPairKey(a, b)
	winner := directConversation(a, b)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByPairKey", mock.Anything, key).Return(chat.Conversation{}, mingle_errors.ErrNotFound).Once()
	convRepo.On("Create", mock.Anything, mock.Anything).Return(mingle_errors.ErrAlreadyExists)
	convRepo.On("GetByPairKey", mock.Anything, key).Return(winner, nil).Once()

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	got, err := svc.FindOrCreateDirect(context.Background(), a, b)

	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
}

func TestFindOrCreateDirectRejectsSelf(t *testing.T) {
	a := uuid.New()
	svc := newConversationService(new(MockConversationRepo), new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))

	_, err := svc.FindOrCreateDirect(context.Background(), a, a)
	assert.ErrorIs(t, err, mingle_errors.ErrInvalidInput)
}

func TestCreateGroupDedupesParticipants(t *testing.T) {
	creator := uuid.New()
	other := uuid.New()

	convRepo := new(MockConversationRepo)
	var created chat.Conversation
	convRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = *args.Get(1).(*chat.Conversation)
		}).
		Return(nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	_, err := svc.CreateGroup(context.Background(), creator, []uuid.UUID{other, other, creator}, "weekend plans")

	require.NoError(t, err)
	require.Len(t, created.Participants, 2)
	assert.True(t, created.HasParticipant(creator))
	assert.True(t, created.HasParticipant(other))
	assert.Equal(t, creator, created.CreatorID.UUID)
	assert.Equal(t, "weekend plans", created.Title.String)
}

func TestAddParticipantCreatorOnly(t *testing.T) {
	creator, member, outsider := uuid.New(), uuid.New(), uuid.New()
	conv := groupConversation(creator, member)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	err := svc.AddParticipant(context.Background(), conv.ID, member, outsider)

	assert.ErrorIs(t, err, mingle_errors.ErrForbidden)
	convRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything)
}

func TestAddParticipantAlreadyMemberIsNoop(t *testing.T) {
	creator, member := uuid.New(), uuid.New()
	conv := groupConversation(creator, member)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	err := svc.AddParticipant(context.Background(), conv.ID, creator, member)

	require.NoError(t, err)
	convRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything)
}

func TestRemoveParticipantCreatorCannotRemoveSelf(t *testing.T) {
	creator, member := uuid.New(), uuid.New()
	conv := groupConversation(creator, member)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	err := svc.RemoveParticipant(context.Background(), conv.ID, creator, creator)

	assert.ErrorIs(t, err, mingle_errors.ErrInvalidInput)
	convRepo.AssertNotCalled(t, "RemoveParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestMembersRequiresMembership(t *testing.T) {
	creator, outsider := uuid.New(), uuid.New()
	conv := groupConversation(creator)

	convRepo := new(MockConversationRepo)
	convRepo.On("GetByID", mock.Anything, conv.ID).Return(conv, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	_, _, err := svc.Members(context.Background(), conv.ID, outsider)

	assert.ErrorIs(t, err, mingle_errors.ErrForbidden)
}

func TestListForUserOrdersByActivity(t *testing.T) {
	me, friend := uuid.New(), uuid.New()

	older := directConversation(me, friend)
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	newer := groupConversation(me, friend)
	newer.CreatedAt = time.Now().Add(-1 * time.Hour)

	// The older conversation has the most recent message, so it sorts first.
	lastMsg := chat.Message{
		ID:             uuid.New(),
		ConversationID: older.ID,
		SenderID:       friend,
		CreatedAt:      time.Now(),
	}

	convRepo := new(MockConversationRepo)
	convRepo.On("GetUserConversations", mock.Anything, me).Return([]chat.Conversation{newer, older}, nil)

	messageRepo := new(MockMessageRepo)
	messageRepo.On("GetLastMessages", mock.Anything, mock.Anything).
		Return(map[uuid.UUID]chat.Message{older.ID: lastMsg}, nil)

	unseenRepo := new(MockUnseenRepo)
	unseenRepo.On("CountByConversation", mock.Anything, me).
		Return(map[uuid.UUID]int64{older.ID: 3}, nil)

	userRepo := new(MockUserRepo)
	userRepo.On("GetByIDs", mock.Anything, mock.Anything).
		Return([]user.User{{ID: me, FirstName: "Mia"}, {ID: friend, FirstName: "Finn"}}, nil)

	svc := newConversationService(convRepo, messageRepo, unseenRepo, userRepo)
	summaries, err := svc.ListForUser(context.Background(), me)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, older.ID, summaries[0].Conversation.ID)
	assert.Equal(t, int64(3), summaries[0].UnseenCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "Finn", summaries[0].LastMessage.Sender.FirstName)
	assert.Equal(t, newer.ID, summaries[1].Conversation.ID)
	assert.Nil(t, summaries[1].LastMessage)
	assert.Zero(t, summaries[1].UnseenCount)
}

func TestListForUserEmpty(t *testing.T) {
	me := uuid.New()
	convRepo := new(MockConversationRepo)
	convRepo.On("GetUserConversations", mock.Anything, me).Return([]chat.Conversation{}, nil)

	svc := newConversationService(convRepo, new(MockMessageRepo), new(MockUnseenRepo), new(MockUserRepo))
	summaries, err := svc.ListForUser(context.Background(), me)

	require.NoError(t, err)
	assert.Empty(t, summaries)
}
