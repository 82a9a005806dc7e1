package models

import (
	"time"

	"github.com/google/uuid"
)

// Analytics event types
const (
	EventProductView   = "product_view"
	EventProductClick  = "product_click"
	EventOfferCreated  = "offer_created"
	EventOfferAccepted = "offer_accepted"
	EventWishlistAdd   = "wishlist_add"
)

// AnalyticsEvent is an append-only log row. The negotiation engine only
// writes these; aggregation happens in read-side projections.
type AnalyticsEvent struct {
	ID            uuid.UUID      `json:"id"`
	EventType     string         `json:"event_type"`
	UserID        *uuid.UUID     `json:"user_id,omitempty"`
	ProductID     *uuid.UUID     `json:"product_id,omitempty"`
	NegotiationID *uuid.UUID     `json:"negotiation_id,omitempty"`
	IP            *string        `json:"ip,omitempty"`
	UserAgent     string         `json:"user_agent,omitempty"`
	Referrer      string         `json:"referrer,omitempty"`
	Country       string         `json:"country,omitempty"`
	Region        string         `json:"region,omitempty"`
	City          string         `json:"city,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TopProduct is an aggregate row for the top-products projection.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Count     int64     `json:"count"`
	Title     *string   `json:"title,omitempty"`
}

// LocationCount aggregates events by geo fields.
type LocationCount struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Count   int64  `json:"count"`
}
