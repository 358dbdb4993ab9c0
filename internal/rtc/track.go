package rtc

import (
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// Track is one media stream shared into a conversation. It carries a stable
// opaque id so removal never depends on transceiver positions, which shift
// when tracks are added or removed concurrently.
type Track struct {
	ID           string
	SourcePeerID string
	Local        *webrtc.TrackLocalStaticRTP
}

// NewForwardedTrack wraps a remote track in a local one that other peers can
// subscribe to.
func NewForwardedTrack(sourcePeerID string, remote *webrtc.TrackRemote) (*Track, error) {
	local, err := webrtc.NewTrackLocalStaticRTP(
		remote.Codec().RTPCodecCapability,
		uuid.NewString(),
		remote.StreamID(),
	)
	if err != nil {
		return nil, err
	}
	return &Track{
		ID:           local.ID(),
		SourcePeerID: sourcePeerID,
		Local:        local,
	}, nil
}

// Pump copies RTP packets from the remote track into the forwarded one until
// the source stops. Runs on its own goroutine per track.
func (t *Track) Pump(remote *webrtc.TrackRemote) error {
	buf := make([]byte, 1500)
	for {
		n, _, err := remote.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if _, err := t.Local.Write(buf[:n]); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return err
		}
	}
}
