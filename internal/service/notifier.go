package service

import (
	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
)

// Notifier fans a persisted message out to live subscribers. Implemented by
// the ws package; a nil notifier means no realtime delivery.
type Notifier interface {
	MessageDelivered(senderID, targetID uuid.UUID, msg *domain.ChatMessage)
}
