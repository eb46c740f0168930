package ws

import (
	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"go.uber.org/zap"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
	log *zap.Logger
}

func NewHubNotifier(hub *Hub, log *zap.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, log: log}
}

// MessageDelivered broadcasts a persisted message to the pair's room,
// including the sender's own connection.
func (n *HubNotifier) MessageDelivered(senderID, targetID uuid.UUID, msg *domain.ChatMessage) {
	roomID := RoomID(senderID, targetID)
	evt, err := NewEvent(EventTypeMessageReceived, roomID, MessageReceivedPayload{ChatMessage: *msg})
	if err != nil {
		n.log.Error("ws notifier marshal", zap.Error(err))
		return
	}
	n.hub.Broadcast(roomID, evt)
}
