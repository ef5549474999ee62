package model

// WebhookEvent is the body the ticketing system posts when a record changes.
// Unknown event types are acknowledged and ignored, so webhook delivery
// never fails on forward-compatible payloads.
type WebhookEvent struct {
	EventType  string `json:"event_type"`
	CustomerID string `json:"customer_id"`
}

const (
	// EventCustomerUpdated is the only event type that triggers cache
	// invalidation today.
	EventCustomerUpdated = "customer.updated"
	// EventTicketCreated is acknowledged as a no-op.
	EventTicketCreated = "ticket.created"
)
