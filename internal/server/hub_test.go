package server

import (
	"encoding/json"
	"testing"

	"mingle-server/internal/events"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return NewClient(hub, nil, nil, userID, logger.NewNop())
}

func receivedFrame(t *testing.T, c *Client) serverFrame {
	t.Helper()
	select {
	case raw := <-c.send:
		var frame serverFrame
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	default:
		t.Fatal("expected a frame in the send queue")
		return serverFrame{}
	}
}

func TestDeliverAddressedEvent(t *testing.T) {
	hub := NewHub(logger.NewNop())
	alice, bob := uuid.New(), uuid.New()

	aliceClient := newTestClient(hub, alice)
	bobClient := newTestClient(hub, bob)
	hub.handleRegister(aliceClient)
	hub.handleRegister(bobClient)

	payload, _ := json.Marshal(map[string]string{"type": "follow"})
	hub.Deliver(events.Event{Name: events.EventNotification, UserID: &alice, Payload: payload})

	frame := receivedFrame(t, aliceClient)
	assert.Equal(t, "event", frame.Type)
	assert.Equal(t, events.EventNotification, frame.Name)
	assert.Empty(t, bobClient.send, "addressed events only reach the recipient")
}

func TestDeliverBroadcastReachesEveryConnection(t *testing.T) {
	hub := NewHub(logger.NewNop())
	alice := uuid.New()

	tab1 := newTestClient(hub, alice)
	tab2 := newTestClient(hub, alice)
	other := newTestClient(hub, uuid.New())
	hub.handleRegister(tab1)
	hub.handleRegister(tab2)
	hub.handleRegister(other)

	hub.Deliver(events.Event{Name: events.EventMessage})

	for _, c := range []*Client{tab1, tab2, other} {
		frame := receivedFrame(t, c)
		assert.Equal(t, events.EventMessage, frame.Name)
	}
}

func TestDeliverToOfflineUserIsNoop(t *testing.T) {
	hub := NewHub(logger.NewNop())
	offline := uuid.New()

	hub.Deliver(events.Event{Name: events.EventNotification, UserID: &offline})
	assert.Zero(t, hub.ConnectionCount(offline))
}

func TestUnregisterRemovesConnection(t *testing.T) {
	hub := NewHub(logger.NewNop())
	alice := uuid.New()

	client := newTestClient(hub, alice)
	hub.handleRegister(client)
	require.Equal(t, 1, hub.ConnectionCount(alice))

	hub.handleUnregister(client)
	assert.Zero(t, hub.ConnectionCount(alice))

	// A second unregister for the same client must not panic.
	hub.handleUnregister(client)
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	hub := NewHub(logger.NewNop())
	alice := uuid.New()

	client := newTestClient(hub, alice)
	hub.handleRegister(client)
	hub.handleUnregister(client)

	// Signaling callbacks can outlive the connection; they must drop their
	// frames instead of hitting the closed queue.
	assert.NotPanics(t, func() {
		client.trySend([]byte(`{"type":"icecandidate"}`))
	})
	assert.NoError(t, client.SendCandidate(webrtc.ICECandidateInit{Candidate: "candidate:1"}))
	assert.NotPanics(t, client.closeSend)
}

func TestEvictionIsSafeWhileClientInCall(t *testing.T) {
	hub := NewHub(logger.NewNop())
	alice := uuid.New()

	tabs := make(map[string]*Client, maxConnectionsPerUser)
	hub.clients[alice] = make(map[string]*Client)
	for i := 0; i < maxConnectionsPerUser; i++ {
		c := newTestClient(hub, alice)
		hub.clients[alice][c.clientID] = c
		tabs[c.clientID] = c
	}

	newcomer := newTestClient(hub, alice)
	hub.handleRegister(newcomer)
	assert.Equal(t, maxConnectionsPerUser, hub.ConnectionCount(alice))

	var evicted *Client
	for id, c := range tabs {
		if _, ok := hub.clients[alice][id]; !ok {
			evicted = c
		}
	}
	require.NotNil(t, evicted, "one existing connection makes room for the newcomer")

	// A late ICE candidate on the evicted connection must not reach the
	// closed queue.
	assert.NotPanics(t, func() {
		require.NoError(t, evicted.SendCandidate(webrtc.ICECandidateInit{Candidate: "candidate:1"}))
	})
}

func TestConnectionRateLimiter(t *testing.T) {
	rl := NewConnectionRateLimiter()
	alice := uuid.New()

	for i := 0; i < connectionsPerMinute; i++ {
		assert.True(t, rl.AllowConnection(alice))
	}
	assert.False(t, rl.AllowConnection(alice))
	assert.True(t, rl.AllowConnection(uuid.New()), "limits are per user")
}
