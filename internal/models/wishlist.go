package models

import (
	"time"

	"github.com/google/uuid"
)

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WishlistItemWithProduct embeds the product for list responses.
type WishlistItemWithProduct struct {
	WishlistItem
	Product Product `json:"product"`
}
