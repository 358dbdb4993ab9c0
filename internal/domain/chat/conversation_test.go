package chat_test

import (
	"database/sql"
	"testing"

	"mingle-server/internal/domain/chat"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDirectPairKeyIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, chat.DirectPairKey(a, b), chat.DirectPairKey(b, a))
	assert.NotEqual(t, chat.DirectPairKey(a, b), chat.DirectPairKey(a, uuid.New()))
}

func TestIsDirect(t *testing.T) {
	direct := chat.Conversation{ID: uuid.New()}
	assert.True(t, direct.IsDirect())

	group := chat.Conversation{
		ID:        uuid.New(),
		CreatorID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		Title:     sql.NullString{String: "trip", Valid: true},
	}
	assert.False(t, group.IsDirect())
}

func TestHasParticipant(t *testing.T) {
	member := uuid.New()
	conv := chat.Conversation{
		Participants: []chat.Participant{{UserID: member}},
	}
	assert.True(t, conv.HasParticipant(member))
	assert.False(t, conv.HasParticipant(uuid.New()))
}
