package domain

import "time"

// Registration marks that an attendee holds a slot in an event's tier.
// At most one exists per (event, attendee) pair. Position is assigned by
// storage in registration order and drives attendee enumeration.
type Registration struct {
	EventID   string
	Attendee  string
	TierID    int
	Position  int64
	CreatedAt time.Time
}
