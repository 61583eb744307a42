package domain

import "time"

type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Ticket is a transferable token of admission. Exactly one owner at a time;
// Used and Cancelled are terminal. Ids are sequential from 1.
type Ticket struct {
	ID        int64
	EventID   string
	Organizer string
	Owner     string
	IssuedAt  time.Time
	Status    TicketStatus
}
