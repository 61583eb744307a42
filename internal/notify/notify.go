// Package notify carries the append-only notification feed emitted by
// mutating operations. Each successful state change publishes exactly one
// envelope per notification named in its contract; external observers consume
// them in publish order.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of notification.
type Type string

const (
	TypeEventCreated       Type = "event.created"
	TypeEventUpdated       Type = "event.updated"
	TypeEventStatusChanged Type = "event.status_changed"
	TypeEventCancelled     Type = "event.cancelled"
	TypeRegistered         Type = "event.registered"
	TypePaymentReceived    Type = "payment.received"
	TypeTicketMinted       Type = "ticket.minted"
	TypeTicketTransferred  Type = "ticket.transferred"
	TypeTicketUsed         Type = "ticket.used"
	TypeTicketCancelled    Type = "ticket.cancelled"
)

// Notification is an immutable envelope around a typed payload.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New builds a notification envelope with a fresh id.
func New(typ Type, occurredAt time.Time, payload any) Notification {
	return Notification{
		ID:         uuid.New(),
		Type:       typ,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}

// EventCreatedPayload captures the payload for event.created notifications.
type EventCreatedPayload struct {
	EventID   string    `json:"event_id"`
	Organizer string    `json:"organizer"`
	Name      string    `json:"name"`
	Venue     string    `json:"venue"`
	StartsAt  time.Time `json:"starts_at"`
	TierCount int       `json:"tier_count"`
}

// EventUpdatedPayload captures the payload for event.updated notifications.
type EventUpdatedPayload struct {
	EventID  string    `json:"event_id"`
	Name     string    `json:"name"`
	Venue    string    `json:"venue"`
	StartsAt time.Time `json:"starts_at"`
}

// EventStatusChangedPayload captures the payload for event.status_changed
// notifications.
type EventStatusChangedPayload struct {
	EventID   string `json:"event_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// EventCancelledPayload captures the payload for event.cancelled notifications.
type EventCancelledPayload struct {
	EventID string `json:"event_id"`
}

// RegisteredPayload captures the payload for event.registered notifications.
type RegisteredPayload struct {
	EventID  string `json:"event_id"`
	Attendee string `json:"attendee"`
	TierID   int    `json:"tier_id"`
	Sold     int    `json:"sold"`
}

// PaymentReceivedPayload captures the payload for payment.received
// notifications.
type PaymentReceivedPayload struct {
	PaymentID int64  `json:"payment_id"`
	EventID   string `json:"event_id"`
	Payer     string `json:"payer"`
	Amount    int64  `json:"amount"`
}

// TicketMintedPayload captures the payload for ticket.minted notifications.
type TicketMintedPayload struct {
	TicketID int64  `json:"ticket_id"`
	EventID  string `json:"event_id"`
	Owner    string `json:"owner"`
}

// TicketTransferredPayload captures the payload for ticket.transferred
// notifications.
type TicketTransferredPayload struct {
	TicketID int64  `json:"ticket_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// TicketUsedPayload captures the payload for ticket.used notifications.
type TicketUsedPayload struct {
	TicketID int64  `json:"ticket_id"`
	EventID  string `json:"event_id"`
}

// TicketCancelledPayload captures the payload for ticket.cancelled
// notifications.
type TicketCancelledPayload struct {
	TicketID int64  `json:"ticket_id"`
	EventID  string `json:"event_id"`
}
