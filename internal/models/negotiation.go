package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Negotiation statuses. OPEN is the only non-terminal state.
const (
	NegotiationStatusOpen     = "open"
	NegotiationStatusAccepted = "accepted"
	NegotiationStatusRejected = "rejected"
	NegotiationStatusCanceled = "canceled"
)

// IsTerminalNegotiationStatus reports whether no further transition is
// permitted out of status.
func IsTerminalNegotiationStatus(status string) bool {
	switch status {
	case NegotiationStatusAccepted, NegotiationStatusRejected, NegotiationStatusCanceled:
		return true
	}
	return false
}

type Negotiation struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	// Seller and buyer are captured at creation time and never change,
	// even if the product later changes hands.
	SellerID       uuid.UUID       `json:"seller_id"`
	BuyerID        uuid.UUID       `json:"buyer_id"`
	Status         string          `json:"status"`
	LastOfferPrice decimal.Decimal `json:"last_offer_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsParty reports whether userID is the buyer or the seller.
func (n *Negotiation) IsParty(userID uuid.UUID) bool {
	return userID == n.SellerID || userID == n.BuyerID
}

// NegotiationWithParties adds public party info for list/detail responses.
type NegotiationWithParties struct {
	Negotiation
	SellerUsername string  `json:"seller_username"`
	BuyerUsername  string  `json:"buyer_username"`
	ProductTitle   *string `json:"product_title,omitempty"`
}

// NegotiationDetail is the full read model: negotiation plus its round
// history in chronological order.
type NegotiationDetail struct {
	NegotiationWithParties
	Rounds []OfferRound `json:"rounds"`
}

// OfferRound is a single priced proposal inside a negotiation. Seq is a
// monotonic per-table sequence used to break created_at ties when picking
// the most recent round.
type OfferRound struct {
	ID                uuid.UUID       `json:"id"`
	Seq               int64           `json:"-"`
	NegotiationID     uuid.UUID       `json:"negotiation_id"`
	OfferedByID       uuid.UUID       `json:"offered_by_id"`
	OfferedByUsername string          `json:"offered_by_username,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Message           string          `json:"message,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}
