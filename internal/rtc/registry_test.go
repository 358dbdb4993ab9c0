package rtc_test

import (
	"sync"
	"testing"

	"mingle-server/internal/rtc"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeForwarder records which tracks were forwarded to it.
type fakeForwarder struct {
	id      string
	mu      sync.Mutex
	added   []string
	removed []string
}

func (f *fakeForwarder) PeerID() string { return f.id }

func (f *fakeForwarder) AddForward(t *rtc.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, t.ID)
	return nil
}

func (f *fakeForwarder) RemoveForward(trackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, trackID)
	return nil
}

func (f *fakeForwarder) addedTracks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

func (f *fakeForwarder) removedTracks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.removed...)
}

func TestShareTrackFansOutToOtherPeers(t *testing.T) {
	registry := rtc.NewRegistry()
	session := registry.Session(uuid.New())

	alice := &fakeForwarder{id: "alice"}
	bob := &fakeForwarder{id: "bob"}
	carol := &fakeForwarder{id: "carol"}
	session.AddPeer(alice)
	session.AddPeer(bob)
	session.AddPeer(carol)

	track := &rtc.Track{ID: "track-1", SourcePeerID: "alice"}
	errs := session.ShareTrack(track)

	assert.Empty(t, errs)
	assert.Empty(t, alice.addedTracks(), "the source never receives its own track")
	assert.Equal(t, []string{"track-1"}, bob.addedTracks())
	assert.Equal(t, []string{"track-1"}, carol.addedTracks())
	require.Len(t, session.Tracks(), 1)
}

func TestUnshareTrackRemovesFromSubscribers(t *testing.T) {
	registry := rtc.NewRegistry()
	session := registry.Session(uuid.New())

	alice := &fakeForwarder{id: "alice"}
	bob := &fakeForwarder{id: "bob"}
	session.AddPeer(alice)
	session.AddPeer(bob)

	session.ShareTrack(&rtc.Track{ID: "track-1", SourcePeerID: "alice"})
	session.UnshareTrack("track-1")

	assert.Equal(t, []string{"track-1"}, bob.removedTracks())
	assert.Empty(t, alice.removedTracks())
	assert.Empty(t, session.Tracks())
}

func TestUnshareUnknownTrackIsNoop(t *testing.T) {
	registry := rtc.NewRegistry()
	session := registry.Session(uuid.New())

	bob := &fakeForwarder{id: "bob"}
	session.AddPeer(bob)

	session.UnshareTrack("missing")
	assert.Empty(t, bob.removedTracks())
}

func TestRemovePeerUnsharesItsTracks(t *testing.T) {
	registry := rtc.NewRegistry()
	conversationID := uuid.New()
	session := registry.Session(conversationID)

	alice := &fakeForwarder{id: "alice"}
	bob := &fakeForwarder{id: "bob"}
	carol := &fakeForwarder{id: "carol"}
	session.AddPeer(alice)
	session.AddPeer(bob)
	session.AddPeer(carol)

	session.ShareTrack(&rtc.Track{ID: "cam-a", SourcePeerID: "alice"})
	session.ShareTrack(&rtc.Track{ID: "cam-b", SourcePeerID: "bob"})

	empty := session.RemovePeer("alice")

	assert.False(t, empty)
	assert.Contains(t, bob.removedTracks(), "cam-a")
	assert.Contains(t, carol.removedTracks(), "cam-a")
	assert.NotContains(t, carol.removedTracks(), "cam-b")
	require.Len(t, session.Tracks(), 1)
	assert.Equal(t, "cam-b", session.Tracks()[0].ID)
}

func TestRegistryDropsEmptySessions(t *testing.T) {
	registry := rtc.NewRegistry()
	conversationID := uuid.New()
	session := registry.Session(conversationID)

	alice := &fakeForwarder{id: "alice"}
	session.AddPeer(alice)
	assert.Equal(t, 1, registry.ActiveSessions())

	registry.Drop(conversationID, "alice")
	assert.Equal(t, 0, registry.ActiveSessions())

	// Dropping from a gone session must not panic.
	registry.Drop(conversationID, "alice")
}

func TestSessionIsPerConversation(t *testing.T) {
	registry := rtc.NewRegistry()
	a, b := uuid.New(), uuid.New()

	assert.Same(t, registry.Session(a), registry.Session(a))
	assert.NotSame(t, registry.Session(a), registry.Session(b))
	assert.Equal(t, 2, registry.ActiveSessions())
}
