package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesRoomSubscribersOnly(t *testing.T) {
	h := NewHub()

	a := h.Subscribe("room-a")
	b := h.Subscribe("room-b")
	defer h.Unsubscribe("room-a", a)
	defer h.Unsubscribe("room-b", b)

	h.Publish(Event{Kind: KindStatus, RoomID: "room-a", Payload: "closed"})

	select {
	case ev := <-a.C:
		require.Equal(t, KindStatus, ev.Kind)
		require.Equal(t, "room-a", ev.RoomID)
	default:
		t.Fatal("subscriber of room-a got nothing")
	}

	select {
	case <-b.C:
		t.Fatal("subscriber of room-b should not receive room-a events")
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()

	s := h.Subscribe("room-a")
	require.Equal(t, 1, h.Count("room-a"))

	h.Unsubscribe("room-a", s)
	require.Equal(t, 0, h.Count("room-a"))

	_, open := <-s.C
	require.False(t, open)

	// Double unsubscribe must not panic.
	h.Unsubscribe("room-a", s)
}

func TestPublishNeverBlocks(t *testing.T) {
	h := NewHub()

	s := h.Subscribe("room-a")
	defer h.Unsubscribe("room-a", s)

	for i := 0; i < cap(s.C)+10; i++ {
		h.Publish(Event{Kind: KindOrderItems, RoomID: "room-a"})
	}
	require.Len(t, s.C, cap(s.C))
}

func TestPublishToEmptyRoom(t *testing.T) {
	h := NewHub()
	h.Publish(Event{Kind: KindStatus, RoomID: "nobody-here"})
}
