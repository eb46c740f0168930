package ws

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// RoomID derives the chat room identifier for a user pair: sha256 over the
// two ids sorted ascending and joined with "$". Both participants compute the
// same opaque, fixed-length id without any lookup.
func RoomID(a, b uuid.UUID) string {
	s1, s2 := a.String(), b.String()
	if s1 > s2 {
		s1, s2 = s2, s1
	}
	sum := sha256.Sum256([]byte(s1 + "$" + s2))
	return hex.EncodeToString(sum[:])
}
