package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentRecord is an escrow entry: funds moved from the payer into the
// custodial account, held pending a later release/refund decision. Ids are
// sequential from 1 and never reused.
type PaymentRecord struct {
	ID        int64
	EventID   string
	Payer     string
	Amount    int64
	Token     string
	Status    PaymentStatus
	CreatedAt time.Time
}

// EscrowConfig holds the one-time payment ledger initialization values.
type EscrowConfig struct {
	Admin string
	Token string
}
