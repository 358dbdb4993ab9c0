package rtc

import (
	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// Relay is the selective forwarding unit: each participant sends media once
// to the server, and the server forwards it to every other participant in
// the conversation's call.
type Relay struct {
	registry *Registry
	config   webrtc.Configuration
	log      *logger.Logger
}

func NewRelay(stunServer string, log *logger.Logger) *Relay {
	config := webrtc.Configuration{}
	if stunServer != "" {
		config.ICEServers = []webrtc.ICEServer{{URLs: []string{stunServer}}}
	}
	return &Relay{
		registry: NewRegistry(),
		config:   config,
		log:      log,
	}
}

func (r *Relay) Registry() *Registry {
	return r.registry
}

// Connect handles a participant's initial offer: it builds the server peer,
// attaches every track already shared in the conversation, and returns the
// answer to ack back over the signaling socket.
func (r *Relay) Connect(conversationID uuid.UUID, peerID string, signaler Signaler, offer webrtc.SessionDescription) (*Peer, webrtc.SessionDescription, error) {
	pc, err := webrtc.NewPeerConnection(r.config)
	if err != nil {
		return nil, webrtc.SessionDescription{}, err
	}

	session := r.registry.Session(conversationID)
	peer := &Peer{
		id:             peerID,
		conversationID: conversationID,
		pc:             pc,
		signaler:       signaler,
		session:        session,
		log:            r.log,
		senders:        make(map[string]*webrtc.RTPSender),
		sourcedMids:    make(map[string]string),
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		if err := signaler.SendCandidate(c.ToJSON()); err != nil {
			r.log.Warnf("rtc peer %s: send candidate: %v", peerID, err)
		}
	})

	pc.OnNegotiationNeeded(func() {
		go peer.negotiate()
	})

	pc.OnTrack(func(remote *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		track, err := NewForwardedTrack(peerID, remote)
		if err != nil {
			r.log.Errorf("rtc peer %s: wrap track: %v", peerID, err)
			return
		}
		peer.registerSourced(receiver, track.ID)

		go func() {
			if err := track.Pump(remote); err != nil {
				r.log.Warnf("rtc track %s: pump ended: %v", track.ID, err)
			}
		}()

		for _, err := range session.ShareTrack(track) {
			r.log.Warnf("rtc track %s: forward: %v", track.ID, err)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			session.AddPeer(peer)
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed,
			webrtc.PeerConnectionStateClosed:
			r.Disconnect(peer)
		}
	})

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		return nil, webrtc.SessionDescription{}, err
	}
	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return nil, webrtc.SessionDescription{}, err
	}
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return nil, webrtc.SessionDescription{}, err
	}

	// Tracks already live in the call are forwarded after the answer; each
	// AddForward fires a renegotiation toward this client.
	for _, t := range session.Tracks() {
		if t.SourcePeerID == peerID {
			continue
		}
		if err := peer.AddForward(t); err != nil {
			r.log.Warnf("rtc peer %s: attach existing track %s: %v", peerID, t.ID, err)
		}
	}

	return peer, answer, nil
}

// Disconnect tears one peer out of its call: its tracks leave every other
// peer, each with a removal notice, and the session is collected when empty.
// Idempotent; both the connection-state callback and the socket close path
// call it.
func (r *Relay) Disconnect(peer *Peer) {
	r.registry.Drop(peer.conversationID, peer.id)
	if err := peer.pc.Close(); err != nil {
		r.log.Warnf("rtc peer %s: close: %v", peer.id, err)
	}
}
