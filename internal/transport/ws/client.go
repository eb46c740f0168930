package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/service"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256

	// sendRate caps how fast one connection may submit messages.
	sendRate  = rate.Limit(5)
	sendBurst = 10
)

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	chat   *service.ChatService
	log    *zap.Logger
	userID uuid.UUID

	limiter *rate.Limiter

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, chat *service.ChatService, log *zap.Logger, userID uuid.UUID) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		chat:    chat,
		log:     log,
		userID:  userID,
		limiter: rate.NewLimiter(sendRate, sendBurst),
		send:    make(chan []byte, sendBufSize),
		done:    make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and handles them. Runs in its own
// goroutine, one per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.log.Warn("ws read", zap.String("user", c.userID.String()), zap.Error(err))
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypeJoinChat:
		var p JoinChatPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.TargetUserID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid joinChat payload")
			return
		}
		// Joining is deliberately permissive: the delivery gate applies at
		// send time, not here.
		c.hub.join <- subscription{client: c, roomID: RoomID(c.userID, p.TargetUserID)}

	case EventTypeLeaveChat:
		var p JoinChatPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.TargetUserID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid leaveChat payload")
			return
		}
		c.hub.leave <- subscription{client: c, roomID: RoomID(c.userID, p.TargetUserID)}

	case EventTypeSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(event.Payload, &p); err != nil || p.TargetUserID == uuid.Nil {
			c.sendError("INVALID_PAYLOAD", "invalid sendMessage payload")
			return
		}
		c.handleSend(&p)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

func (c *Client) handleSend(p *SendMessagePayload) {
	if !c.limiter.Allow() {
		c.sendError("RATE_LIMITED", "slow down")
		return
	}

	_, err := c.chat.SendRealtime(context.Background(), c.userID, p.TargetUserID, p.Text)
	switch {
	case err == nil:
		// Delivery happens via the hub broadcast, sender included.
	case errors.Is(err, service.ErrNotConnected):
		// Silently dropped; the service already logged and counted it.
	case errors.Is(err, service.ErrEmptyMessage):
		c.sendError("EMPTY_MESSAGE", "message text is required")
	case errors.Is(err, service.ErrUserNotFound):
		c.sendError("UNKNOWN_TARGET", "target user not found")
	default:
		c.log.Error("ws send", zap.String("user", c.userID.String()), zap.Error(err))
		c.sendError("INTERNAL", "could not deliver message")
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	c.enqueue(data)
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// enqueue queues a frame for WritePump without ever blocking. A client that
// has been shut down, or whose buffer is full, simply misses the frame.
func (c *Client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
	}
}
