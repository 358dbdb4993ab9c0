package rtc

import (
	"sync"

	"github.com/google/uuid"
)

// Forwarder is the per-participant side of the relay: a connected peer that
// forwarded tracks can be added to and removed from.
type Forwarder interface {
	PeerID() string
	AddForward(t *Track) error
	RemoveForward(trackID string) error
}

// Session is the ephemeral call state of one conversation: the connected
// peers and the tracks currently shared between them. All mutation happens
// under the session lock; socket callbacks run on arbitrary goroutines.
type Session struct {
	mu             sync.Mutex
	conversationID uuid.UUID
	peers          map[string]Forwarder
	tracks         map[string]*Track
}

func newSession(conversationID uuid.UUID) *Session {
	return &Session{
		conversationID: conversationID,
		peers:          make(map[string]Forwarder),
		tracks:         make(map[string]*Track),
	}
}

// AddPeer marks a peer connected and subscribes it to nothing; tracks shared
// before the peer joined are attached at offer time, not here.
func (s *Session) AddPeer(p Forwarder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[p.PeerID()] = p
}

// Tracks snapshots the currently shared tracks.
func (s *Session) Tracks() []*Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	tracks := make([]*Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		tracks = append(tracks, t)
	}
	return tracks
}

// Peers snapshots the connected peer set.
func (s *Session) Peers() []Forwarder {
	s.mu.Lock()
	defer s.mu.Unlock()
	peers := make([]Forwarder, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	return peers
}

// ShareTrack registers a track and fans it out to every connected peer except
// its source.
func (s *Session) ShareTrack(t *Track) []error {
	s.mu.Lock()
	s.tracks[t.ID] = t
	targets := make([]Forwarder, 0, len(s.peers))
	for id, p := range s.peers {
		if id != t.SourcePeerID {
			targets = append(targets, p)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, p := range targets {
		if err := p.AddForward(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// UnshareTrack removes a track from the session and from every peer it was
// forwarded to. Unknown ids are a no-op.
func (s *Session) UnshareTrack(trackID string) {
	s.mu.Lock()
	t, ok := s.tracks[trackID]
	if ok {
		delete(s.tracks, trackID)
	}
	targets := make([]Forwarder, 0, len(s.peers))
	for id, p := range s.peers {
		if !ok || id != t.SourcePeerID {
			targets = append(targets, p)
		}
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	for _, p := range targets {
		_ = p.RemoveForward(trackID)
	}
}

// RemovePeer drops a peer and unshares everything it was sourcing. Returns
// true when the session is now empty and should be garbage-collected.
func (s *Session) RemovePeer(peerID string) bool {
	s.mu.Lock()
	delete(s.peers, peerID)
	var orphaned []string
	for id, t := range s.tracks {
		if t.SourcePeerID == peerID {
			orphaned = append(orphaned, id)
		}
	}
	empty := len(s.peers) == 0
	s.mu.Unlock()

	for _, id := range orphaned {
		s.UnshareTrack(id)
	}
	return empty
}

// Registry maps conversations to their live call sessions. Sessions appear
// on the first signaling message and disappear with the last peer.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Session returns the conversation's session, creating it if needed.
func (r *Registry) Session(conversationID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[conversationID]
	if !ok {
		s = newSession(conversationID)
		r.sessions[conversationID] = s
	}
	return s
}

// Drop removes a peer from its session, deleting the session when empty.
func (r *Registry) Drop(conversationID uuid.UUID, peerID string) {
	r.mu.Lock()
	s, ok := r.sessions[conversationID]
	r.mu.Unlock()
	if !ok {
		return
	}
	if s.RemovePeer(peerID) {
		r.mu.Lock()
		if cur, ok := r.sessions[conversationID]; ok && cur == s {
			delete(r.sessions, conversationID)
		}
		r.mu.Unlock()
	}
}

// ActiveSessions reports how many calls are live. Used by tests and the
// health endpoint.
func (r *Registry) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
