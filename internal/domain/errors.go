package domain

import "errors"

// Event registry errors.
var (
	ErrEventNotFound           = errors.New("event not found")
	ErrEventAlreadyExists      = errors.New("event already exists")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidEventDate        = errors.New("invalid event date")
	ErrInvalidTicketCount      = errors.New("invalid ticket count")
	ErrInvalidPrice            = errors.New("invalid price")
	ErrEventNotUpdatable       = errors.New("event not updatable")
	ErrTierNotFound            = errors.New("tier not found")
)

// Registration errors.
var (
	ErrEventNotActive    = errors.New("event not active")
	ErrTierSoldOut       = errors.New("tier sold out")
	ErrAlreadyRegistered = errors.New("already registered")
)

// Payment escrow errors.
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotInitialized    = errors.New("payments not initialized")
)

// Ticket ledger errors.
var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketNotTransferable = errors.New("ticket not transferable")
	ErrTransferToSelf        = errors.New("transfer to self")
	ErrTicketAlreadyUsed     = errors.New("ticket already used")
)
