package server

import (
	"encoding/json"
	"sync"
	"time"

	"mingle-server/internal/events"
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
)

// Hub maintains the set of active clients and routes bus events to them.
// A user may hold several connections (tabs); events addressed to a user go
// to all of them, broadcasts go to everyone.
type Hub struct {
	clients     map[uuid.UUID]map[string]*Client
	register    chan *Client
	unregister  chan *Client
	rateLimiter *ConnectionRateLimiter
	log         *logger.Logger
	mu          sync.RWMutex
	stopChan    chan struct{}
}

// serverFrame wraps a bus event for the wire so clients can tell events from
// signaling frames.
type serverFrame struct {
	Type    string          `json:"type"`
	Name    string          `json:"name,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:     make(map[uuid.UUID]map[string]*Client),
		register:    make(chan *Client, 256),
		unregister:  make(chan *Client, 256),
		rateLimiter: NewConnectionRateLimiter(),
		log:         log,
		stopChan:    make(chan struct{}),
	}
}

// Run processes registrations until Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.stopChan)
}

const maxConnectionsPerUser = 10

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.rateLimiter.AllowConnection(client.userID) {
		h.log.Warnf("ws: connection rate limit exceeded for user %s", client.userID)
		client.conn.Close()
		return
	}

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[string]*Client)
	}
	if len(h.clients[client.userID]) >= maxConnectionsPerUser {
		// Evict one existing connection rather than refusing the new one.
		for id, c := range h.clients[client.userID] {
			c.closeSend()
			delete(h.clients[client.userID], id)
			break
		}
	}
	h.clients[client.userID][client.clientID] = client
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.userID]; ok {
		if _, ok := conns[client.clientID]; ok {
			delete(conns, client.clientID)
			client.closeSend()
			if len(conns) == 0 {
				delete(h.clients, client.userID)
			}
		}
	}
}

// Deliver implements events.Sink: a bus event with a user id goes to that
// user's connections only, an unaddressed one to every connection. Slow
// clients are skipped, not waited on.
func (h *Hub) Deliver(event events.Event) {
	frame, err := json.Marshal(serverFrame{
		Type:    "event",
		Name:    event.Name,
		Payload: event.Payload,
	})
	if err != nil {
		h.log.Errorf("ws: marshal event frame: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.UserID != nil {
		for _, client := range h.clients[*event.UserID] {
			client.trySend(frame)
		}
		return
	}
	for _, conns := range h.clients {
		for _, client := range conns {
			client.trySend(frame)
		}
	}
}

// ConnectionCount reports active connections for a user. Tests use it.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// ConnectionRateLimiter caps how fast one user may open sockets.
type ConnectionRateLimiter struct {
	connectionsPerUser map[uuid.UUID][]time.Time
	mu                 sync.Mutex
}

func NewConnectionRateLimiter() *ConnectionRateLimiter {
	rl := &ConnectionRateLimiter{
		connectionsPerUser: make(map[uuid.UUID][]time.Time),
	}
	go rl.cleanupLoop()
	return rl
}

const connectionsPerMinute = 10

func (rl *ConnectionRateLimiter) AllowConnection(userID uuid.UUID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	windowStart := time.Now().Add(-1 * time.Minute)
	valid := rl.connectionsPerUser[userID][:0]
	for _, t := range rl.connectionsPerUser[userID] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= connectionsPerMinute {
		rl.connectionsPerUser[userID] = valid
		return false
	}
	rl.connectionsPerUser[userID] = append(valid, time.Now())
	return true
}

func (rl *ConnectionRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		rl.mu.Lock()
		for userID, times := range rl.connectionsPerUser {
			valid := times[:0]
			for _, t := range times {
				if t.After(cutoff) {
					valid = append(valid, t)
				}
			}
			if len(valid) == 0 {
				delete(rl.connectionsPerUser, userID)
			} else {
				rl.connectionsPerUser[userID] = valid
			}
		}
		rl.mu.Unlock()
	}
}
