package brackets

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func TestHub_BroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := newRunningHub(t)

	inRoom := &Client{Hub: hub, Send: make(chan []byte, 4), Room: EventRoom("e1")}
	otherRoom := &Client{Hub: hub, Send: make(chan []byte, 4), Room: EventRoom("e2")}
	hub.Register <- inRoom
	hub.Register <- otherRoom
	require.Eventually(t, func() bool { return hub.RoomSize(EventRoom("e1")) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(EventRoom("e1"), WebSocketMessage{Type: MessageRoundCreated, Payload: map[string]int{"round": 2}, RoomID: EventRoom("e1")})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageRoundCreated, msg.Type)
		assert.Equal(t, "event_e1", msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("room member got no message")
	}
	assert.Empty(t, otherRoom.Send)
}

func TestHub_UnregisterClosesSendAndDropsRoom(t *testing.T) {
	hub := newRunningHub(t)

	c := &Client{Hub: hub, Send: make(chan []byte, 1), Room: EventRoom("e1")}
	hub.Register <- c
	hub.Unregister <- c
	require.Eventually(t, func() bool { return hub.RoomSize(EventRoom("e1")) == 0 }, time.Second, 5*time.Millisecond)

	_, open := <-c.Send
	assert.False(t, open)

	// broadcasting to an empty room is a no-op
	hub.BroadcastToRoom(EventRoom("e1"), WebSocketMessage{Type: MessageMatchCompleted})
}

func TestHub_FullBufferDropsMessage(t *testing.T) {
	hub := newRunningHub(t)

	c := &Client{Hub: hub, Send: make(chan []byte, 1), Room: EventRoom("e1")}
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.RoomSize(EventRoom("e1")) == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom(EventRoom("e1"), WebSocketMessage{Type: MessageMatchCompleted})
	hub.BroadcastToRoom(EventRoom("e1"), WebSocketMessage{Type: MessageRoundCreated})

	require.Len(t, c.Send, 1)
	assert.Contains(t, string(<-c.Send), MessageMatchCompleted)
}
