package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deal statuses
const (
	DealStatusPending   = "pending"
	DealStatusPaid      = "paid"
	DealStatusShipped   = "shipped"
	DealStatusCompleted = "completed"
	DealStatusCanceled  = "canceled"
)

// DealStatuses is the closed set accepted by the status tracker.
var DealStatuses = []string{
	DealStatusPending,
	DealStatusPaid,
	DealStatusShipped,
	DealStatusCompleted,
	DealStatusCanceled,
}

// CanSetDealStatus validates a requested fulfillment status. The check is
// membership-only: any defined status may follow any other (pending can jump
// straight to completed). Sequencing lives here alone so a forward-only
// machine can replace it without touching callers.
func CanSetDealStatus(newStatus string) bool {
	for _, s := range DealStatuses {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Deal is the binding record created when a negotiation is accepted.
// AgreedPrice is fixed at accept time and never changes.
type Deal struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	BuyerID     uuid.UUID       `json:"buyer_id"`
	SellerID    uuid.UUID       `json:"seller_id"`
	AgreedPrice decimal.Decimal `json:"agreed_price"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DealWithParties embeds Deal and adds party/product info to avoid N+1
// lookups in list responses.
type DealWithParties struct {
	Deal
	BuyerUsername  string  `json:"buyer_username"`
	SellerUsername string  `json:"seller_username"`
	ProductTitle   *string `json:"product_title,omitempty"`
}
