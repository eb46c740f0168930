package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Hub is the room registry: it maps derived room ids to the set of live
// connections subscribed to them. A single Run loop owns the maps, so
// join/leave/broadcast need no further locking.
type Hub struct {
	log *zap.Logger

	// rooms maps room id → subscribed clients.
	rooms map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	broadcast  chan *broadcastMsg
}

type subscription struct {
	client *Client
	roomID string
}

type broadcastMsg struct {
	roomID string
	data   []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log,
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		broadcast:  make(chan *broadcastMsg, 256),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.log.Info("ws client connected", zap.String("user", client.userID.String()))

		case client := <-h.unregister:
			h.evict(client)
			h.log.Info("ws client disconnected", zap.String("user", client.userID.String()))

		case sub := <-h.join:
			room, ok := h.rooms[sub.roomID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[sub.roomID] = room
			}
			room[sub.client] = struct{}{}
			h.log.Info("ws client joined room",
				zap.String("user", sub.client.userID.String()),
				zap.String("room", sub.roomID),
			)

		case sub := <-h.leave:
			if room, ok := h.rooms[sub.roomID]; ok {
				delete(room, sub.client)
				if len(room) == 0 {
					delete(h.rooms, sub.roomID)
				}
			}

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.roomID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer: drop it rather than stall the room.
					h.evict(client)
					h.log.Warn("ws client evicted, send buffer full",
						zap.String("user", client.userID.String()))
				}
			}
		}
	}
}

// Broadcast fans an event out to every connection in the room. Delivery is
// fire-and-forget per subscriber; a full hub queue drops the event rather
// than block the caller.
func (h *Hub) Broadcast(roomID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("ws broadcast marshal", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- &broadcastMsg{roomID: roomID, data: data}:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", zap.String("room", roomID))
	}
}

// evict removes a client from every room and signals shutdown. Run-loop only.
// send stays open: the client's read goroutine may still queue pong or error
// frames, so shutdown is signalled through done alone and WritePump drains
// until it sees it.
func (h *Hub) evict(client *Client) {
	for roomID, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	client.closeOnce.Do(func() {
		close(client.done)
	})
}
