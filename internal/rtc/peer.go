package rtc

import (
	"context"
	"errors"
	"sync"

	"mingle-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// ErrOfferInFlight is returned when a renegotiation offer arrives while the
// server side already has an outstanding offer. The incoming offer is
// dropped; the side with the offer in flight wins. This resolves glare for
// small calls but is not a complete glare protocol.
var ErrOfferInFlight = errors.New("rtc: local offer in flight")

// Signaler carries negotiation traffic to one participant's socket. SendOffer
// blocks until the client acks with an answer or its socket goes away; there
// is deliberately no timeout here, a stalled negotiation is cleared by
// disconnect.
type Signaler interface {
	SendOffer(ctx context.Context, offer webrtc.SessionDescription) (webrtc.SessionDescription, error)
	SendCandidate(candidate webrtc.ICECandidateInit) error
	SendTrackRemoved(trackID, mid string) error
}

// Peer is the server end of one participant's connection: a pion peer
// connection plus the bookkeeping needed to forward and unforward tracks.
type Peer struct {
	id             string
	conversationID uuid.UUID
	pc             *webrtc.PeerConnection
	signaler       Signaler
	session        *Session
	log            *logger.Logger

	mu          sync.Mutex
	senders     map[string]*webrtc.RTPSender // forwarded track id -> sender
	sourcedMids map[string]string            // transceiver mid -> track id this peer is sourcing
	negotiating sync.Mutex
}

func (p *Peer) PeerID() string { return p.id }

// AddForward attaches a shared track to this peer. The added sender makes
// pion fire OnNegotiationNeeded, which pushes a fresh offer to the client.
func (p *Peer) AddForward(t *Track) error {
	sender, err := p.pc.AddTrack(t.Local)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.senders[t.ID] = sender
	p.mu.Unlock()
	return nil
}

// RemoveForward detaches a forwarded track and tells the client which slot
// died, addressed by the track's stable id plus the negotiated mid.
func (p *Peer) RemoveForward(trackID string) error {
	p.mu.Lock()
	sender, ok := p.senders[trackID]
	if ok {
		delete(p.senders, trackID)
	}
	p.mu.Unlock()
	if !ok {
		return nil
	}

	mid := ""
	for _, tc := range p.pc.GetTransceivers() {
		if tc.Sender() == sender {
			mid = tc.Mid()
			break
		}
	}
	if err := p.pc.RemoveTrack(sender); err != nil {
		return err
	}
	return p.signaler.SendTrackRemoved(trackID, mid)
}

// HandleClientOffer applies a renegotiation offer from the client and
// produces the answer. Dropped with ErrOfferInFlight when the server has its
// own offer outstanding.
func (p *Peer) HandleClientOffer(offer webrtc.SessionDescription) (webrtc.SessionDescription, error) {
	if p.pc.SignalingState() == webrtc.SignalingStateHaveLocalOffer {
		return webrtc.SessionDescription{}, ErrOfferInFlight
	}
	if err := p.pc.SetRemoteDescription(offer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return webrtc.SessionDescription{}, err
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return webrtc.SessionDescription{}, err
	}
	return answer, nil
}

// HandleCandidate feeds a client ICE candidate into the peer connection.
func (p *Peer) HandleCandidate(candidate webrtc.ICECandidateInit) error {
	return p.pc.AddICECandidate(candidate)
}

// StopSharing unshares the track the client is sourcing on the given
// transceiver, identified by its negotiated mid.
func (p *Peer) StopSharing(mid string) {
	p.mu.Lock()
	trackID, ok := p.sourcedMids[mid]
	if ok {
		delete(p.sourcedMids, mid)
	}
	p.mu.Unlock()
	if ok {
		p.session.UnshareTrack(trackID)
	}
}

// negotiate pushes the server's local state to the client: offer out, answer
// back in. Server-initiated renegotiations are serialized per peer; if an
// offer is already outstanding the new state rides along when the current
// round settles and pion fires OnNegotiationNeeded again.
func (p *Peer) negotiate() {
	p.negotiating.Lock()
	defer p.negotiating.Unlock()

	if p.pc.SignalingState() == webrtc.SignalingStateHaveLocalOffer {
		return
	}

	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		p.log.Errorf("rtc peer %s: create offer: %v", p.id, err)
		return
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		p.log.Errorf("rtc peer %s: set local offer: %v", p.id, err)
		return
	}

	answer, err := p.signaler.SendOffer(context.Background(), offer)
	if err != nil {
		// The socket is gone or the client never acked; cleanup happens on
		// the connection-state transition.
		p.log.Warnf("rtc peer %s: offer not answered: %v", p.id, err)
		return
	}
	if err := p.pc.SetRemoteDescription(answer); err != nil {
		p.log.Errorf("rtc peer %s: set remote answer: %v", p.id, err)
	}
}

// registerSourced records that this peer is sourcing trackID on the
// transceiver that owns receiver.
func (p *Peer) registerSourced(receiver *webrtc.RTPReceiver, trackID string) {
	mid := ""
	for _, tc := range p.pc.GetTransceivers() {
		if tc.Receiver() == receiver {
			mid = tc.Mid()
			break
		}
	}
	if mid == "" {
		return
	}
	p.mu.Lock()
	p.sourcedMids[mid] = trackID
	p.mu.Unlock()
}
