package app

import (
	"context"
	"time"

	"github.com/BuidlZone-Labs/zicket-contract/internal/auth"
	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/metrics"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

type EventRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	EventExists(ctx context.Context, eventID string) (bool, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) error
	UpdateEvent(ctx context.Context, event domain.Event) error
	ListEventIDs(ctx context.Context) ([]string, error)
	ListOrganizerEventIDs(ctx context.Context, organizer string) ([]string, error)
}

// RegistryService owns event metadata, ticket-tier definitions, and the
// event status state machine.
type RegistryService struct {
	repo     EventRepository
	clock    clock.Clock
	verifier auth.Verifier
	sink     notify.Sink
}

func NewRegistryService(repo EventRepository, clk clock.Clock, verifier auth.Verifier, sink notify.Sink) *RegistryService {
	return &RegistryService{
		repo:     repo,
		clock:    clk,
		verifier: verifier,
		sink:     sink,
	}
}

// TierParams describes a tier to create or append.
type TierParams struct {
	Name     string
	Price    int64
	Capacity int
}

type CreateEventInput struct {
	Organizer   string
	EventID     string
	Name        string
	Description string
	Venue       string
	StartsAt    time.Time
	Tiers       []TierParams
}

func (s *RegistryService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if err := s.verifier.Verify(ctx, in.Organizer); err != nil {
		return domain.Event{}, err
	}
	if in.EventID == "" || in.Name == "" || in.Venue == "" || len(in.Tiers) == 0 {
		return domain.Event{}, domain.ErrInvalidInput
	}

	now := s.clock.Now()
	if err := validateEventDate(in.StartsAt, now); err != nil {
		return domain.Event{}, err
	}
	for _, p := range in.Tiers {
		if err := validateTierParams(p); err != nil {
			return domain.Event{}, err
		}
	}

	tiers := make([]domain.TicketTier, 0, len(in.Tiers))
	for i, p := range in.Tiers {
		tiers = append(tiers, domain.TicketTier{
			TierID:   i,
			Name:     p.Name,
			Price:    p.Price,
			Capacity: p.Capacity,
		})
	}

	event := domain.Event{
		ID:          in.EventID,
		Organizer:   in.Organizer,
		Name:        in.Name,
		Description: in.Description,
		Venue:       in.Venue,
		StartsAt:    in.StartsAt,
		Tiers:       tiers,
		Status:      domain.EventStatusUpcoming,
		CreatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.EventExists(txCtx, in.EventID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrEventAlreadyExists
		}
		return s.repo.CreateEvent(txCtx, event)
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventCreated, now, notify.EventCreatedPayload{
		EventID:   event.ID,
		Organizer: event.Organizer,
		Name:      event.Name,
		Venue:     event.Venue,
		StartsAt:  event.StartsAt,
		TierCount: len(event.Tiers),
	}))
	metrics.EventsCreated.Inc()

	return event, nil
}

// UpdateEventInput carries optional detail changes; nil fields stay unchanged.
type UpdateEventInput struct {
	Organizer   string
	EventID     string
	Name        *string
	Description *string
	Venue       *string
	StartsAt    *time.Time
}

// UpdateEventDetails applies the supplied fields under the same validation
// rules as creation. A call with no fields set leaves the record identical.
func (s *RegistryService) UpdateEventDetails(ctx context.Context, in UpdateEventInput) (domain.Event, error) {
	if err := s.verifier.Verify(ctx, in.Organizer); err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now()
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.loadUpdatableEvent(txCtx, in.Organizer, in.EventID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			if *in.Name == "" {
				return domain.ErrInvalidInput
			}
			event.Name = *in.Name
		}
		if in.Description != nil {
			event.Description = *in.Description
		}
		if in.Venue != nil {
			if *in.Venue == "" {
				return domain.ErrInvalidInput
			}
			event.Venue = *in.Venue
		}
		if in.StartsAt != nil {
			if err := validateEventDate(*in.StartsAt, now); err != nil {
				return err
			}
			event.StartsAt = *in.StartsAt
		}

		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventUpdated, now, notify.EventUpdatedPayload{
		EventID:  result.ID,
		Name:     result.Name,
		Venue:    result.Venue,
		StartsAt: result.StartsAt,
	}))

	return result, nil
}

// AddTicketTier appends a tier to an Upcoming event. The new tier id is the
// next sequential id.
func (s *RegistryService) AddTicketTier(ctx context.Context, organizer, eventID string, params TierParams) (domain.Event, error) {
	if err := s.verifier.Verify(ctx, organizer); err != nil {
		return domain.Event{}, err
	}
	if err := validateTierParams(params); err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now()
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.loadUpdatableEvent(txCtx, organizer, eventID)
		if err != nil {
			return err
		}

		event.Tiers = append(event.Tiers, domain.TicketTier{
			TierID:   len(event.Tiers),
			Name:     params.Name,
			Price:    params.Price,
			Capacity: params.Capacity,
		})

		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventUpdated, now, notify.EventUpdatedPayload{
		EventID:  result.ID,
		Name:     result.Name,
		Venue:    result.Venue,
		StartsAt: result.StartsAt,
	}))

	return result, nil
}

// UpdateTierInput carries optional tier mutations; nil fields stay unchanged.
type UpdateTierInput struct {
	Organizer string
	EventID   string
	TierID    int
	Name      *string
	Price     *int64
	Capacity  *int
}

func (s *RegistryService) UpdateTier(ctx context.Context, in UpdateTierInput) (domain.Event, error) {
	if err := s.verifier.Verify(ctx, in.Organizer); err != nil {
		return domain.Event{}, err
	}

	now := s.clock.Now()
	var result domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.loadUpdatableEvent(txCtx, in.Organizer, in.EventID)
		if err != nil {
			return err
		}

		idx := -1
		for i := range event.Tiers {
			if event.Tiers[i].TierID == in.TierID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return domain.ErrTierNotFound
		}

		tier := event.Tiers[idx]
		if in.Name != nil {
			if *in.Name == "" {
				return domain.ErrInvalidInput
			}
			tier.Name = *in.Name
		}
		if in.Price != nil {
			if *in.Price < 0 {
				return domain.ErrInvalidPrice
			}
			tier.Price = *in.Price
		}
		if in.Capacity != nil {
			if *in.Capacity < 1 || *in.Capacity >= domain.MaxTierCapacity {
				return domain.ErrInvalidTicketCount
			}
			tier.Capacity = *in.Capacity
		}
		event.Tiers[idx] = tier

		if err := s.repo.UpdateEvent(txCtx, event); err != nil {
			return err
		}
		result = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventUpdated, now, notify.EventUpdatedPayload{
		EventID:  result.ID,
		Name:     result.Name,
		Venue:    result.Venue,
		StartsAt: result.StartsAt,
	}))

	return result, nil
}

// UpdateEventStatus moves the event along the status lattice. The only
// explicit transitions are Upcoming->Active and Active->Completed.
func (s *RegistryService) UpdateEventStatus(ctx context.Context, organizer, eventID string, newStatus domain.EventStatus) error {
	if err := s.verifier.Verify(ctx, organizer); err != nil {
		return err
	}

	now := s.clock.Now()
	var oldStatus domain.EventStatus

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if event.Organizer != organizer {
			return domain.ErrUnauthorized
		}
		if !event.Status.CanTransitionTo(newStatus) {
			return domain.ErrInvalidStatusTransition
		}

		oldStatus = event.Status
		event.Status = newStatus
		return s.repo.UpdateEvent(txCtx, event)
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventStatusChanged, now, notify.EventStatusChangedPayload{
		EventID:   eventID,
		OldStatus: string(oldStatus),
		NewStatus: string(newStatus),
	}))

	return nil
}

// CancelEvent forces the event to Cancelled from any non-terminal status.
func (s *RegistryService) CancelEvent(ctx context.Context, organizer, eventID string) error {
	if err := s.verifier.Verify(ctx, organizer); err != nil {
		return err
	}

	now := s.clock.Now()
	var oldStatus domain.EventStatus

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if event.Organizer != organizer {
			return domain.ErrUnauthorized
		}
		if event.Status.Terminal() {
			return domain.ErrInvalidStatusTransition
		}

		oldStatus = event.Status
		event.Status = domain.EventStatusCancelled
		return s.repo.UpdateEvent(txCtx, event)
	})
	if err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.New(notify.TypeEventStatusChanged, now, notify.EventStatusChangedPayload{
		EventID:   eventID,
		OldStatus: string(oldStatus),
		NewStatus: string(domain.EventStatusCancelled),
	}))
	s.sink.Publish(ctx, notify.New(notify.TypeEventCancelled, now, notify.EventCancelledPayload{
		EventID: eventID,
	}))

	return nil
}

func (s *RegistryService) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return s.repo.GetEvent(ctx, eventID)
}

func (s *RegistryService) GetEventStatus(ctx context.Context, eventID string) (domain.EventStatus, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	return event.Status, nil
}

// ListEvents returns all event ids in creation order.
func (s *RegistryService) ListEvents(ctx context.Context) ([]string, error) {
	return s.repo.ListEventIDs(ctx)
}

// ListOrganizerEvents returns the organizer's event ids in creation order.
func (s *RegistryService) ListOrganizerEvents(ctx context.Context, organizer string) ([]string, error) {
	return s.repo.ListOrganizerEventIDs(ctx, organizer)
}

// loadUpdatableEvent locks the event row and checks the caller may edit it:
// details and tiers are mutable only by the organizer and only while Upcoming.
func (s *RegistryService) loadUpdatableEvent(ctx context.Context, organizer, eventID string) (domain.Event, error) {
	event, err := s.repo.GetEventForUpdate(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.Organizer != organizer {
		return domain.Event{}, domain.ErrUnauthorized
	}
	if event.Status != domain.EventStatusUpcoming {
		return domain.Event{}, domain.ErrEventNotUpdatable
	}
	return event, nil
}

func validateEventDate(startsAt, now time.Time) error {
	if !startsAt.After(now.Add(domain.MinEventLeadTime)) {
		return domain.ErrInvalidEventDate
	}
	return nil
}

func validateTierParams(p TierParams) error {
	if p.Name == "" {
		return domain.ErrInvalidInput
	}
	if p.Capacity < 1 || p.Capacity >= domain.MaxTierCapacity {
		return domain.ErrInvalidTicketCount
	}
	if p.Price < 0 {
		return domain.ErrInvalidPrice
	}
	return nil
}
