package models

import (
	"time"

	"github.com/google/uuid"
)

// Block is a directional relation: BlockerID blocking BlockedID does not
// imply the reverse. The negotiation gate checks both directions.
type Block struct {
	ID        uuid.UUID `json:"id"`
	BlockerID uuid.UUID `json:"blocker_id"`
	BlockedID uuid.UUID `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
