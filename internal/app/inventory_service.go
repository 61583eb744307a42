package app

import (
	"context"

	"github.com/BuidlZone-Labs/zicket-contract/internal/auth"
	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/metrics"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

type RegistrationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	EventExists(ctx context.Context, eventID string) (bool, error)
	IsRegistered(ctx context.Context, eventID, attendee string) (bool, error)
	CreateRegistration(ctx context.Context, reg domain.Registration) error
	IncrementTierSold(ctx context.Context, eventID string, tierID int) (int, error)
	ListAttendees(ctx context.Context, eventID string) ([]string, error)
}

// InventoryService enforces per-tier capacity and per-attendee uniqueness
// during registration. The capacity check and the sold increment run against
// the same locked snapshot and commit as one transaction, so no state where
// sold exceeds capacity is ever observable.
type InventoryService struct {
	repo     RegistrationRepository
	clock    clock.Clock
	verifier auth.Verifier
	sink     notify.Sink
}

func NewInventoryService(repo RegistrationRepository, clk clock.Clock, verifier auth.Verifier, sink notify.Sink) *InventoryService {
	return &InventoryService{
		repo:     repo,
		clock:    clk,
		verifier: verifier,
		sink:     sink,
	}
}

type RegisterInput struct {
	Attendee string
	EventID  string
	TierID   int
}

func (s *InventoryService) Register(ctx context.Context, in RegisterInput) error {
	if err := s.verifier.Verify(ctx, in.Attendee); err != nil {
		return err
	}

	now := s.clock.Now()
	var sold int

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if event.Status != domain.EventStatusActive {
			return domain.ErrEventNotActive
		}

		tier, ok := event.Tier(in.TierID)
		if !ok {
			return domain.ErrTierNotFound
		}
		if tier.Sold >= tier.Capacity {
			return domain.ErrTierSoldOut
		}

		registered, err := s.repo.IsRegistered(txCtx, in.EventID, in.Attendee)
		if err != nil {
			return err
		}
		if registered {
			return domain.ErrAlreadyRegistered
		}

		if err := s.repo.CreateRegistration(txCtx, domain.Registration{
			EventID:   in.EventID,
			Attendee:  in.Attendee,
			TierID:    in.TierID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		sold, err = s.repo.IncrementTierSold(txCtx, in.EventID, in.TierID)
		return err
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeRegistered, now, notify.RegisteredPayload{
		EventID:  in.EventID,
		Attendee: in.Attendee,
		TierID:   in.TierID,
		Sold:     sold,
	}))
	metrics.Registrations.Inc()

	return nil
}

// IsRegistered reports whether the attendee holds a slot in the event.
func (s *InventoryService) IsRegistered(ctx context.Context, eventID, attendee string) (bool, error) {
	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrEventNotFound
	}
	return s.repo.IsRegistered(ctx, eventID, attendee)
}

// Attendees returns attendee identities in registration order.
func (s *InventoryService) Attendees(ctx context.Context, eventID string) ([]string, error) {
	return s.repo.ListAttendees(ctx, eventID)
}
