package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the message log for one unordered user pair. The pair is
// stored in canonical order (user1 < user2 by uuid string) so that the
// (user1_id, user2_id) unique constraint holds regardless of who spoke first.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether the user is one of the two participants.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OrderPair returns the two ids in canonical storage order.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// ChatMessage is immutable once appended; there is no edit or delete.
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	// Joined fields
	SenderFirstName string `json:"sender_first_name,omitempty"`
	SenderLastName  string `json:"sender_last_name,omitempty"`
}
