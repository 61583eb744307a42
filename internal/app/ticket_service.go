package app

import (
	"context"

	"github.com/BuidlZone-Labs/zicket-contract/internal/auth"
	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/metrics"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	NextTicketID(ctx context.Context) (int64, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
	GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error)
	GetTicketForUpdate(ctx context.Context, ticketID int64) (domain.Ticket, error)
	UpdateTicket(ctx context.Context, ticket domain.Ticket) error
	ListOwnerTickets(ctx context.Context, owner string) ([]int64, error)
	ListEventTickets(ctx context.Context, eventID string) ([]int64, error)
}

// TicketService mints, transfers, cancels, and redeems tickets. Ownership is
// exclusive: the owner column is the single source of truth, so owner-keyed
// lists can never disagree with it.
type TicketService struct {
	repo     TicketRepository
	clock    clock.Clock
	verifier auth.Verifier
	sink     notify.Sink
}

func NewTicketService(repo TicketRepository, clk clock.Clock, verifier auth.Verifier, sink notify.Sink) *TicketService {
	return &TicketService{
		repo:     repo,
		clock:    clk,
		verifier: verifier,
		sink:     sink,
	}
}

type MintInput struct {
	Organizer string
	EventID   string
	Owner     string
}

// MintTicket issues a new Valid ticket for an Active event. Only the event's
// organizer of record may issue tickets against it.
func (s *TicketService) MintTicket(ctx context.Context, in MintInput) (domain.Ticket, error) {
	if err := s.verifier.Verify(ctx, in.Organizer); err != nil {
		return domain.Ticket{}, err
	}
	if in.Owner == "" {
		return domain.Ticket{}, domain.ErrInvalidInput
	}

	now := s.clock.Now()
	var ticket domain.Ticket

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEvent(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if event.Organizer != in.Organizer {
			return domain.ErrUnauthorized
		}
		if event.Status != domain.EventStatusActive {
			return domain.ErrEventNotActive
		}

		ticketID, err := s.repo.NextTicketID(txCtx)
		if err != nil {
			return err
		}

		ticket = domain.Ticket{
			ID:        ticketID,
			EventID:   in.EventID,
			Organizer: in.Organizer,
			Owner:     in.Owner,
			IssuedAt:  now,
			Status:    domain.TicketStatusValid,
		}
		return s.repo.CreateTicket(txCtx, ticket)
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeTicketMinted, now, notify.TicketMintedPayload{
		TicketID: ticket.ID,
		EventID:  ticket.EventID,
		Owner:    ticket.Owner,
	}))
	metrics.TicketsMinted.Inc()

	return ticket, nil
}

// TransferTicket moves ownership from one identity to another. The ownership
// switch and the owner-list membership change commit together.
func (s *TicketService) TransferTicket(ctx context.Context, from, to string, ticketID int64) error {
	if err := s.verifier.Verify(ctx, from); err != nil {
		return err
	}
	if to == "" {
		return domain.ErrInvalidInput
	}
	if from == to {
		return domain.ErrTransferToSelf
	}

	now := s.clock.Now()

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Owner != from {
			return domain.ErrUnauthorized
		}
		if ticket.Status != domain.TicketStatusValid {
			return domain.ErrTicketNotTransferable
		}

		ticket.Owner = to
		return s.repo.UpdateTicket(txCtx, ticket)
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeTicketTransferred, now, notify.TicketTransferredPayload{
		TicketID: ticketID,
		From:     from,
		To:       to,
	}))
	metrics.TicketsTransferred.Inc()

	return nil
}

// UseTicket marks a ticket redeemed at check-in. Only the ticket's recorded
// organizer may redeem it. Terminal and irreversible.
func (s *TicketService) UseTicket(ctx context.Context, organizer string, ticketID int64) error {
	if err := s.verifier.Verify(ctx, organizer); err != nil {
		return err
	}

	now := s.clock.Now()
	var eventID string

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Organizer != organizer {
			return domain.ErrUnauthorized
		}
		switch ticket.Status {
		case domain.TicketStatusUsed:
			return domain.ErrTicketAlreadyUsed
		case domain.TicketStatusCancelled:
			// Cancelled tickets surface as an inactive-event condition.
			return domain.ErrEventNotActive
		}

		ticket.Status = domain.TicketStatusUsed
		eventID = ticket.EventID
		return s.repo.UpdateTicket(txCtx, ticket)
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeTicketUsed, now, notify.TicketUsedPayload{
		TicketID: ticketID,
		EventID:  eventID,
	}))
	metrics.TicketsUsed.Inc()

	return nil
}

// CancelTicket voids a Valid ticket. Only the current owner may cancel.
// Terminal and irreversible.
func (s *TicketService) CancelTicket(ctx context.Context, caller string, ticketID int64) error {
	if err := s.verifier.Verify(ctx, caller); err != nil {
		return err
	}

	now := s.clock.Now()
	var eventID string

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicketForUpdate(txCtx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Owner != caller {
			return domain.ErrUnauthorized
		}
		switch ticket.Status {
		case domain.TicketStatusUsed:
			return domain.ErrTicketAlreadyUsed
		case domain.TicketStatusCancelled:
			return domain.ErrInvalidStatusTransition
		}

		ticket.Status = domain.TicketStatusCancelled
		eventID = ticket.EventID
		return s.repo.UpdateTicket(txCtx, ticket)
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeTicketCancelled, now, notify.TicketCancelledPayload{
		TicketID: ticketID,
		EventID:  eventID,
	}))

	return nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return s.repo.GetTicket(ctx, ticketID)
}

// OwnerTickets returns the owner's ticket ids in acquisition order.
func (s *TicketService) OwnerTickets(ctx context.Context, owner string) ([]int64, error) {
	return s.repo.ListOwnerTickets(ctx, owner)
}

// EventTickets returns the event's ticket ids in mint order.
func (s *TicketService) EventTickets(ctx context.Context, eventID string) ([]int64, error) {
	return s.repo.ListEventTickets(ctx, eventID)
}
