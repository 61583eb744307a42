package domain

import "time"

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CanTransitionTo reports whether the status lattice allows an explicit move
// to next. The only explicit edges are Upcoming->Active and Active->Completed;
// cancellation is a forced transition handled by CancelEvent.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return (s == EventStatusUpcoming && next == EventStatusActive) ||
		(s == EventStatusActive && next == EventStatusCompleted)
}

// Terminal reports whether no further transition is reachable from s.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled
}

// Tier capacity bounds: capacity must satisfy 1 <= capacity < MaxTierCapacity.
const MaxTierCapacity = 100_000

// MinEventLeadTime is how far in the future an event date must be, both at
// creation and when rescheduling.
const MinEventLeadTime = 24 * time.Hour

// TicketTier is a priced capacity bucket within an event. Tier ids are
// assigned sequentially from 0 in creation order and never reused.
type TicketTier struct {
	TierID   int
	Name     string
	Price    int64
	Capacity int
	Sold     int
}

// Event is the registry record for a ticketed event. The organizer is the
// immutable owner; details are mutable only while the event is Upcoming.
type Event struct {
	ID          string
	Organizer   string
	Name        string
	Description string
	Venue       string
	StartsAt    time.Time
	Tiers       []TicketTier
	Status      EventStatus
	CreatedAt   time.Time
}

// Tier returns the tier with the given id, or false when absent.
func (e Event) Tier(tierID int) (TicketTier, bool) {
	for _, t := range e.Tiers {
		if t.TierID == tierID {
			return t, true
		}
	}
	return TicketTier{}, false
}
