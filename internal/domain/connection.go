package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the state of a connection request. The sender creates a row as
// either "interested" or "ignored"; only an "interested" row may later be
// reviewed by the recipient into "accepted" or "rejected". Every other
// status is terminal.
type Status string

const (
	StatusInterested Status = "interested"
	StatusIgnored    Status = "ignored"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
)

// ParseSendStatus accepts the statuses a sender may create a request with.
func ParseSendStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusInterested, StatusIgnored:
		return Status(s), true
	}
	return "", false
}

// ParseReviewStatus accepts the decisions a recipient may review with.
func ParseReviewStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAccepted, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// CanReview reports whether a request in this status is still pending review.
func (s Status) CanReview() bool {
	return s == StatusInterested
}

type ConnectionRequest struct {
	ID         uuid.UUID `json:"id"`
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	// Joined fields
	FromFirstName string  `json:"from_first_name,omitempty"`
	FromLastName  string  `json:"from_last_name,omitempty"`
	FromPhotoURL  *string `json:"from_photo_url,omitempty"`
	ToFirstName   string  `json:"to_first_name,omitempty"`
	ToLastName    string  `json:"to_last_name,omitempty"`
}

// Pair is a ledger row projected down to its two participants, used to build
// feed exclusion sets.
type Pair struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
}

// Connection is an accepted pair resolved to the "other" user for a viewer.
type Connection struct {
	RequestID      uuid.UUID `json:"request_id"`
	OtherUserID    uuid.UUID `json:"other_user_id"`
	OtherFirstName string    `json:"other_first_name"`
	OtherLastName  string    `json:"other_last_name"`
	OtherPhotoURL  *string   `json:"other_photo_url,omitempty"`
	ConnectedAt    time.Time `json:"connected_at"`
}

// Activity is a ledger row rendered for the viewer's recent-activity list.
type Activity struct {
	RequestID      uuid.UUID `json:"id"`
	OtherUserID    uuid.UUID `json:"user_id"`
	OtherFirstName string    `json:"first_name"`
	OtherLastName  string    `json:"last_name"`
	Verb           string    `json:"activity"`
	Status         Status    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
}

// ActivityVerb renders a ledger row as seen by one of its participants.
// recipient is true when the viewer is the row's to_user_id.
func ActivityVerb(status Status, recipient bool) string {
	if recipient {
		switch status {
		case StatusInterested:
			return "sent you a connection request"
		case StatusIgnored:
			return "passed on your profile"
		case StatusAccepted:
			return "accepted your connection"
		case StatusRejected:
			return "declined your connection"
		}
	} else {
		switch status {
		case StatusInterested:
			return "received your connection request"
		case StatusIgnored:
			return "you passed on"
		case StatusAccepted:
			return "you connected with"
		case StatusRejected:
			return "you declined connection with"
		}
	}
	return ""
}
