package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub) *Client {
	// No conn and no pumps: tests read the send channel directly.
	return NewClient(hub, nil, nil, zap.NewNop(), uuid.New())
}

func recvEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("unmarshaling event: %v", err)
		}
		return &evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func expectSilence(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	sender := newTestClient(hub)
	peer := newTestClient(hub)
	outsider := newTestClient(hub)

	roomID := RoomID(sender.userID, peer.userID)
	hub.join <- subscription{client: sender, roomID: roomID}
	hub.join <- subscription{client: peer, roomID: roomID}
	hub.join <- subscription{client: outsider, roomID: RoomID(outsider.userID, uuid.New())}

	evt, err := NewEvent(EventTypeMessageReceived, roomID, map[string]string{"text": "hello"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.Broadcast(roomID, evt)

	for _, c := range []*Client{sender, peer} {
		got := recvEvent(t, c)
		if got.Type != EventTypeMessageReceived {
			t.Errorf("event type = %q, want %q", got.Type, EventTypeMessageReceived)
		}
		if got.Room != roomID {
			t.Errorf("event room = %q, want %q", got.Room, roomID)
		}
	}
	expectSilence(t, outsider)
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	a := newTestClient(hub)
	b := newTestClient(hub)
	roomID := RoomID(a.userID, b.userID)
	hub.join <- subscription{client: a, roomID: roomID}
	hub.join <- subscription{client: b, roomID: roomID}

	hub.leave <- subscription{client: b, roomID: roomID}

	evt, err := NewEvent(EventTypeMessageReceived, roomID, map[string]string{"text": "after leave"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.Broadcast(roomID, evt)

	recvEvent(t, a)
	expectSilence(t, b)
}

func TestHubBroadcastOrderPerSubscriber(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	a := newTestClient(hub)
	b := newTestClient(hub)
	roomID := RoomID(a.userID, b.userID)
	hub.join <- subscription{client: a, roomID: roomID}

	texts := []string{"one", "two", "three"}
	for _, text := range texts {
		evt, err := NewEvent(EventTypeMessageReceived, roomID, map[string]string{"text": text})
		if err != nil {
			t.Fatalf("NewEvent: %v", err)
		}
		hub.Broadcast(roomID, evt)
	}

	for i, want := range texts {
		evt := recvEvent(t, a)
		var p map[string]string
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			t.Fatalf("unmarshaling payload: %v", err)
		}
		if p["text"] != want {
			t.Errorf("event %d text = %q, want %q", i, p["text"], want)
		}
	}
}

func TestHubEvictsSlowConsumer(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	slow := newTestClient(hub)
	roomID := RoomID(slow.userID, uuid.New())
	hub.join <- subscription{client: slow, roomID: roomID}

	// Fill the send buffer without draining it.
	for i := 0; i < sendBufSize; i++ {
		slow.send <- []byte("{}")
	}

	evt, err := NewEvent(EventTypeMessageReceived, roomID, map[string]string{"text": "overflow"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.Broadcast(roomID, evt)

	select {
	case <-slow.done:
	case <-time.After(time.Second):
		t.Fatal("slow consumer was not evicted")
	}
}

func TestEvictedClientStillHandlesEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	slow := newTestClient(hub)
	roomID := RoomID(slow.userID, uuid.New())
	hub.join <- subscription{client: slow, roomID: roomID}

	for i := 0; i < sendBufSize; i++ {
		slow.send <- []byte("{}")
	}

	evt, err := NewEvent(EventTypeMessageReceived, roomID, map[string]string{"text": "overflow"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	hub.Broadcast(roomID, evt)

	select {
	case <-slow.done:
	case <-time.After(time.Second):
		t.Fatal("slow consumer was not evicted")
	}

	// The read goroutine can race the eviction and keep dispatching events;
	// queueing replies on an evicted client must be a no-op, not a panic.
	slow.sendPong()
	slow.sendError("RATE_LIMITED", "slow down")
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	c := newTestClient(hub)
	hub.register <- c
	hub.join <- subscription{client: c, roomID: RoomID(c.userID, uuid.New())}

	hub.unregister <- c

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("unregistered client was not closed")
	}
}
