package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeJoinChat    = "joinChat"
	EventTypeLeaveChat   = "leaveChat"
	EventTypeSendMessage = "sendMessage"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageReceived = "messageReceived"
	EventTypePong            = "pong"
	EventTypeError           = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Room      string          `json:"room,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinChatPayload struct {
	TargetUserID uuid.UUID `json:"target_user_id"`
}

type SendMessagePayload struct {
	TargetUserID uuid.UUID `json:"target_user_id"`
	Text         string    `json:"text"`
}

// --- Server → Client payloads ---

type MessageReceivedPayload struct {
	domain.ChatMessage
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, room string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Room:      room,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
