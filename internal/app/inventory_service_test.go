package app

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

func TestInventoryService_Register(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(status domain.EventStatus, capacity int) (*InventoryService, *fakeRegistrationRepo, *notify.MemorySink) {
		repo := newFakeRegistrationRepo(domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Status:    status,
			Tiers: []domain.TicketTier{
				{TierID: 0, Name: "GA", Price: 100, Capacity: capacity},
			},
		})
		sink := notify.NewMemorySink()
		svc := NewInventoryService(repo, clock.NewFixed(now), newFakeVerifier(), sink)
		return svc, repo, sink
	}

	t.Run("registers attendee and increments sold", func(t *testing.T) {
		svc, repo, sink := makeSvc(domain.EventStatusActive, 5)

		err := svc.Register(context.Background(), RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tier, _ := repo.event.Tier(0)
		if tier.Sold != 1 {
			t.Fatalf("expected sold 1, got %d", tier.Sold)
		}

		last, ok := sink.Last()
		if !ok || last.Type != notify.TypeRegistered {
			t.Fatalf("expected registered notification, got %v", last.Type)
		}
		payload := last.Payload.(notify.RegisteredPayload)
		if payload.Attendee != "alice" || payload.TierID != 0 || payload.Sold != 1 {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	})

	t.Run("rejects registration while event not active", func(t *testing.T) {
		for _, status := range []domain.EventStatus{
			domain.EventStatusUpcoming,
			domain.EventStatusCompleted,
			domain.EventStatusCancelled,
		} {
			svc, repo, _ := makeSvc(status, 5)
			err := svc.Register(context.Background(), RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0})
			if err != domain.ErrEventNotActive {
				t.Fatalf("status %s: expected ErrEventNotActive, got %v", status, err)
			}
			if len(repo.registrations) != 0 {
				t.Fatal("expected no registration persisted")
			}
		}
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		svc, _, _ := makeSvc(domain.EventStatusActive, 5)
		err := svc.Register(context.Background(), RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 3})
		if err != domain.ErrTierNotFound {
			t.Fatalf("expected ErrTierNotFound, got %v", err)
		}
	})

	t.Run("rejects unknown event", func(t *testing.T) {
		svc, _, _ := makeSvc(domain.EventStatusActive, 5)
		err := svc.Register(context.Background(), RegisterInput{Attendee: "alice", EventID: "MISSING", TierID: 0})
		if err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		svc, repo, _ := makeSvc(domain.EventStatusActive, 5)
		ctx := context.Background()

		if err := svc.Register(ctx, RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0}); err != nil {
			t.Fatalf("first registration: %v", err)
		}
		if err := svc.Register(ctx, RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0}); err != domain.ErrAlreadyRegistered {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}
		tier, _ := repo.event.Tier(0)
		if tier.Sold != 1 {
			t.Fatalf("expected sold unchanged at 1, got %d", tier.Sold)
		}
	})

	t.Run("sells exactly capacity and never beyond", func(t *testing.T) {
		const capacity = 7
		svc, repo, _ := makeSvc(domain.EventStatusActive, capacity)
		ctx := context.Background()

		for i := 0; i < capacity; i++ {
			attendee := fmt.Sprintf("attendee-%d", i)
			if err := svc.Register(ctx, RegisterInput{Attendee: attendee, EventID: "EVT001", TierID: 0}); err != nil {
				t.Fatalf("registration %d: %v", i, err)
			}
			tier, _ := repo.event.Tier(0)
			if tier.Sold > tier.Capacity {
				t.Fatalf("sold %d exceeds capacity %d", tier.Sold, tier.Capacity)
			}
		}

		err := svc.Register(ctx, RegisterInput{Attendee: "one-too-many", EventID: "EVT001", TierID: 0})
		if err != domain.ErrTierSoldOut {
			t.Fatalf("expected ErrTierSoldOut, got %v", err)
		}
		tier, _ := repo.event.Tier(0)
		if tier.Sold != capacity {
			t.Fatalf("expected sold %d, got %d", capacity, tier.Sold)
		}
	})

	t.Run("rejects unauthenticated attendee", func(t *testing.T) {
		repo := newFakeRegistrationRepo(domain.Event{
			ID:     "EVT001",
			Status: domain.EventStatusActive,
			Tiers:  []domain.TicketTier{{TierID: 0, Capacity: 5}},
		})
		svc := NewInventoryService(repo, clock.NewFixed(now), newFakeVerifier("mallory"), notify.NewMemorySink())
		err := svc.Register(context.Background(), RegisterInput{Attendee: "mallory", EventID: "EVT001", TierID: 0})
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

// Lifecycle walk from the contract: registering before activation fails,
// capacity 1 admits exactly one attendee, and lookups observe the result.
func TestInventoryService_LifecycleScenario(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRegistrationRepo(domain.Event{
		ID:        "EVT001",
		Organizer: "org-1",
		Status:    domain.EventStatusUpcoming,
		Tiers:     []domain.TicketTier{{TierID: 0, Name: "GA", Price: 100, Capacity: 1}},
	})
	svc := NewInventoryService(repo, clock.NewFixed(now), newFakeVerifier(), notify.NewMemorySink())
	ctx := context.Background()

	err := svc.Register(ctx, RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0})
	if err != domain.ErrEventNotActive {
		t.Fatalf("expected ErrEventNotActive while upcoming, got %v", err)
	}

	repo.event.Status = domain.EventStatusActive

	if err := svc.Register(ctx, RegisterInput{Attendee: "alice", EventID: "EVT001", TierID: 0}); err != nil {
		t.Fatalf("register alice: %v", err)
	}
	tier, _ := repo.event.Tier(0)
	if tier.Sold != 1 {
		t.Fatalf("expected sold 1, got %d", tier.Sold)
	}

	err = svc.Register(ctx, RegisterInput{Attendee: "bob", EventID: "EVT001", TierID: 0})
	if err != domain.ErrTierSoldOut {
		t.Fatalf("expected ErrTierSoldOut for bob, got %v", err)
	}

	registered, err := svc.IsRegistered(ctx, "EVT001", "alice")
	if err != nil || !registered {
		t.Fatalf("expected alice registered, got %v %v", registered, err)
	}
	registered, err = svc.IsRegistered(ctx, "EVT001", "bob")
	if err != nil || registered {
		t.Fatalf("expected bob not registered, got %v %v", registered, err)
	}
	if _, err := svc.IsRegistered(ctx, "MISSING", "alice"); err != domain.ErrEventNotFound {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestInventoryService_Attendees(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRegistrationRepo(domain.Event{
		ID:     "EVT001",
		Status: domain.EventStatusActive,
		Tiers:  []domain.TicketTier{{TierID: 0, Capacity: 10}},
	})
	svc := NewInventoryService(repo, clock.NewFixed(now), newFakeVerifier(), notify.NewMemorySink())
	ctx := context.Background()

	for _, attendee := range []string{"carol", "alice", "bob"} {
		if err := svc.Register(ctx, RegisterInput{Attendee: attendee, EventID: "EVT001", TierID: 0}); err != nil {
			t.Fatalf("register %s: %v", attendee, err)
		}
	}

	attendees, err := svc.Attendees(ctx, "EVT001")
	if err != nil {
		t.Fatalf("attendees: %v", err)
	}
	if !reflect.DeepEqual(attendees, []string{"carol", "alice", "bob"}) {
		t.Fatalf("expected registration order preserved, got %v", attendees)
	}
}

type fakeRegistrationRepo struct {
	event         domain.Event
	registrations map[string]bool
	attendees     []string
}

func newFakeRegistrationRepo(event domain.Event) *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		event:         event,
		registrations: make(map[string]bool),
	}
}

func regKey(eventID, attendee string) string {
	return eventID + "|" + attendee
}

func (f *fakeRegistrationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRegistrationRepo) GetEventForUpdate(_ context.Context, eventID string) (domain.Event, error) {
	if eventID != f.event.ID {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return f.event, nil
}

func (f *fakeRegistrationRepo) EventExists(_ context.Context, eventID string) (bool, error) {
	return eventID == f.event.ID, nil
}

func (f *fakeRegistrationRepo) IsRegistered(_ context.Context, eventID, attendee string) (bool, error) {
	return f.registrations[regKey(eventID, attendee)], nil
}

func (f *fakeRegistrationRepo) CreateRegistration(_ context.Context, reg domain.Registration) error {
	key := regKey(reg.EventID, reg.Attendee)
	if f.registrations[key] {
		return domain.ErrAlreadyRegistered
	}
	f.registrations[key] = true
	f.attendees = append(f.attendees, reg.Attendee)
	return nil
}

func (f *fakeRegistrationRepo) IncrementTierSold(_ context.Context, eventID string, tierID int) (int, error) {
	if eventID != f.event.ID {
		return 0, domain.ErrEventNotFound
	}
	for i := range f.event.Tiers {
		if f.event.Tiers[i].TierID == tierID {
			if f.event.Tiers[i].Sold >= f.event.Tiers[i].Capacity {
				return 0, domain.ErrTierSoldOut
			}
			f.event.Tiers[i].Sold++
			return f.event.Tiers[i].Sold, nil
		}
	}
	return 0, domain.ErrTierNotFound
}

func (f *fakeRegistrationRepo) ListAttendees(_ context.Context, eventID string) ([]string, error) {
	if eventID != f.event.ID {
		return nil, nil
	}
	return append([]string{}, f.attendees...), nil
}
