package events

import "context"

// Event types published on the marketplace stream.
const (
	EventNegotiationStarted = "negotiation_started"
	EventOfferPlaced        = "offer_placed"
	EventNegotiationClosed  = "negotiation_closed"
	EventDealCreated        = "deal_created"
	EventDealStatusChanged  = "deal_status_changed"
	EventAnalyticsRecorded  = "analytics_recorded"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
