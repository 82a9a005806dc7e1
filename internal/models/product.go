package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product conditions
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionUsed    = "used"
)

func IsValidCondition(c string) bool {
	return c == ConditionNew || c == ConditionLikeNew || c == ConditionUsed
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Condition   string          `json:"condition"`
	IsActive    bool            `json:"is_active"`
	// MinOfferPrice of zero means "no floor".
	MinOfferPrice   decimal.Decimal `json:"min_offer_price"`
	LocationCity    string          `json:"location_city,omitempty"`
	LocationState   string          `json:"location_state,omitempty"`
	LocationCountry string          `json:"location_country,omitempty"`
	CategoryID      *uuid.UUID      `json:"category_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ProductWithStats joins analytics projections onto a listing. The counters
// are derived from the analytics event log, never stored on the product row.
type ProductWithStats struct {
	Product
	SellerUsername string `json:"seller_username"`
	ViewCount      int64  `json:"product_view_count"`
	ClickCount     int64  `json:"product_click_count,omitempty"`
	WishlistCount  int64  `json:"wishlist_count,omitempty"`
}

type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text,omitempty"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
