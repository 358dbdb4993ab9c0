package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"mingle-server/internal/rtc"
	mingle_errors "mingle-server/pkg/errors"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// clientMessage is one frame from the browser. Signaling frames reuse the
// event names of the original wire contract: chatrtc, negotiationneeded,
// icecandidate, removetrack.
type clientMessage struct {
	Type           string                     `json:"type"`
	ConversationID uuid.UUID                  `json:"conversation_id,omitempty"`
	Ack            int64                      `json:"ack,omitempty"`
	SDP            *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate      *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	Mid            string                     `json:"mid,omitempty"`
}

type signalFrame struct {
	Type      string                     `json:"type"`
	Ack       int64                      `json:"ack,omitempty"`
	SDP       *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
	TrackID   string                     `json:"track_id,omitempty"`
	Mid       string                     `json:"mid,omitempty"`
}

// Client is a single websocket connection: the delivery end of the event bus
// and the signaling channel of at most one call peer.
type Client struct {
	hub      *Hub
	relay    *rtc.Relay
	conn     *websocket.Conn
	send     chan []byte
	userID   uuid.UUID
	clientID string
	log      *logger.Logger

	mu      sync.Mutex
	peer    *rtc.Peer
	ackSeq  int64
	pending map[int64]chan webrtc.SessionDescription

	sendMu     sync.Mutex
	sendClosed bool
}

func NewClient(hub *Hub, relay *rtc.Relay, conn *websocket.Conn, userID uuid.UUID, log *logger.Logger) *Client {
	return &Client{
		hub:      hub,
		relay:    relay,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		clientID: uuid.NewString(),
		log:      log,
		pending:  make(map[int64]chan webrtc.SessionDescription),
	}
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.teardown()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warnf("ws client %s: unexpected close: %v", c.clientID, err)
			}
			return
		}
		if err := c.handleMessage(raw); err != nil {
			c.log.Warnf("ws client %s: handle %v", c.clientID, err)
		}
	}
}

func (c *Client) handleMessage(raw []byte) error {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}

	switch msg.Type {
	case "chatrtc":
		// Negotiation blocks on the database-free pion state machine only,
		// but keep it off the read pump so candidates keep flowing.
		go c.handleCallOffer(msg)
		return nil
	case "negotiationneeded":
		go c.handleRenegotiate(msg)
		return nil
	case "icecandidate":
		return c.handleCandidate(msg)
	case "removetrack":
		return c.handleRemoveTrack(msg)
	case "ack":
		return c.handleAck(msg)
	case "ping":
		c.trySend([]byte(`{"type":"pong"}`))
		return nil
	default:
		c.log.Warnf("ws client %s: unknown frame type %q", c.clientID, msg.Type)
		return nil
	}
}

// handleCallOffer services the first signaling frame of a call: build the
// server peer, answer in the ack.
func (c *Client) handleCallOffer(msg clientMessage) {
	if msg.SDP == nil || msg.ConversationID == uuid.Nil {
		return
	}

	c.mu.Lock()
	already := c.peer != nil
	c.mu.Unlock()
	if already {
		return
	}

	peer, answer, err := c.relay.Connect(msg.ConversationID, c.clientID, c, *msg.SDP)
	if err != nil {
		c.log.Errorf("ws client %s: call offer: %v", c.clientID, err)
		return
	}

	c.mu.Lock()
	c.peer = peer
	c.mu.Unlock()

	c.sendFrame(signalFrame{Type: "ack", Ack: msg.Ack, SDP: &answer})
}

func (c *Client) handleRenegotiate(msg clientMessage) {
	peer := c.currentPeer()
	if peer == nil || msg.SDP == nil {
		return
	}
	answer, err := peer.HandleClientOffer(*msg.SDP)
	if err != nil {
		if !errors.Is(err, rtc.ErrOfferInFlight) {
			c.log.Warnf("ws client %s: renegotiate: %v", c.clientID, err)
		}
		// No ack: the client's offer lost the glare race.
		return
	}
	c.sendFrame(signalFrame{Type: "ack", Ack: msg.Ack, SDP: &answer})
}

func (c *Client) handleCandidate(msg clientMessage) error {
	peer := c.currentPeer()
	if peer == nil || msg.Candidate == nil {
		return nil
	}
	return peer.HandleCandidate(*msg.Candidate)
}

func (c *Client) handleRemoveTrack(msg clientMessage) error {
	peer := c.currentPeer()
	if peer == nil || msg.Mid == "" {
		return nil
	}
	peer.StopSharing(msg.Mid)
	return nil
}

func (c *Client) handleAck(msg clientMessage) error {
	c.mu.Lock()
	ch, ok := c.pending[msg.Ack]
	if ok {
		delete(c.pending, msg.Ack)
	}
	c.mu.Unlock()
	if ok && msg.SDP != nil {
		ch <- *msg.SDP
	}
	return nil
}

// SendOffer implements rtc.Signaler: push an offer, block until the client
// acks with its answer or the socket dies.
func (c *Client) SendOffer(ctx context.Context, offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	c.mu.Lock()
	c.ackSeq++
	ack := c.ackSeq
	ch := make(chan webrtc.SessionDescription, 1)
	c.pending[ack] = ch
	c.mu.Unlock()

	c.sendFrame(signalFrame{Type: "negotiationneeded", Ack: ack, SDP: &offer})

	select {
	case answer, ok := <-ch:
		if !ok {
			return webrtc.SessionDescription{}, mingle_errors.ErrServiceUnavailable
		}
		return answer, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, ack)
		c.mu.Unlock()
		return webrtc.SessionDescription{}, ctx.Err()
	}
}

// SendCandidate implements rtc.Signaler.
func (c *Client) SendCandidate(candidate webrtc.ICECandidateInit) error {
	c.sendFrame(signalFrame{Type: "icecandidate", Candidate: &candidate})
	return nil
}

// SendTrackRemoved implements rtc.Signaler.
func (c *Client) SendTrackRemoved(trackID, mid string) error {
	c.sendFrame(signalFrame{Type: "removetrack", TrackID: trackID, Mid: mid})
	return nil
}

func (c *Client) currentPeer() *rtc.Peer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// teardown runs when the socket closes: the call peer leaves its session and
// every negotiation blocked on this socket unblocks with an error.
func (c *Client) teardown() {
	c.mu.Lock()
	peer := c.peer
	c.peer = nil
	pending := c.pending
	c.pending = make(map[int64]chan webrtc.SessionDescription)
	c.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
	if peer != nil {
		c.relay.Disconnect(peer)
	}
}

func (c *Client) sendFrame(frame signalFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.log.Errorf("ws client %s: marshal frame: %v", c.clientID, err)
		return
	}
	c.trySend(data)
}

// trySend queues a frame without blocking; a client that cannot drain its
// buffer loses frames rather than stalling delivery to everyone else. The hub
// may close the queue while the client's call peer is still firing signaling
// callbacks, so frames arriving after closeSend are dropped.
func (c *Client) trySend(data []byte) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warnf("ws client %s: send buffer full, dropping frame", c.clientID)
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
