package brackets

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	inRoom := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "1"}
	otherRoom := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "2"}
	hub.Register <- inRoom
	hub.Register <- otherRoom

	require.Eventually(t, func() bool { return hub.ClientCount("1") == 1 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToRoom("1", WebSocketMessage{Type: MessageMatchUpdated, RoomID: "1", Payload: map[string]int{"match_id": 4}})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageMatchUpdated, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Empty(t, otherRoom.Send)

	hub.Unregister <- inRoom
	require.Eventually(t, func() bool { return hub.ClientCount("1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-inRoom.Send
	assert.False(t, open)
}
