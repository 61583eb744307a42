package postgres

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/testutil"
)

func TestRegistrationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewRegistrationRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	seedEvent := func(t *testing.T, ctx context.Context, capacity int) {
		testutil.InsertEvent(t, ctx, pool, domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Name:      "Summit",
			Status:    domain.EventStatusActive,
			Tiers: []domain.TicketTier{
				{TierID: 0, Name: "GA", Price: 100, Capacity: capacity},
			},
		})
	}

	t.Run("CreateRegistration enforces one per attendee", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		seedEvent(t, ctx, 10)

		reg := domain.Registration{
			EventID:   "EVT001",
			Attendee:  "alice",
			TierID:    0,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateRegistration(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := repo.CreateRegistration(ctx, reg); err != domain.ErrAlreadyRegistered {
			t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
		}

		registered, err := repo.IsRegistered(ctx, "EVT001", "alice")
		if err != nil || !registered {
			t.Fatalf("expected registered, got %v %v", registered, err)
		}
		registered, err = repo.IsRegistered(ctx, "EVT001", "bob")
		if err != nil || registered {
			t.Fatalf("expected not registered, got %v %v", registered, err)
		}
	})

	t.Run("IncrementTierSold stops at capacity", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		seedEvent(t, ctx, 2)

		for want := 1; want <= 2; want++ {
			sold, err := repo.IncrementTierSold(ctx, "EVT001", 0)
			if err != nil {
				t.Fatalf("increment %d: %v", want, err)
			}
			if sold != want {
				t.Fatalf("expected sold %d, got %d", want, sold)
			}
		}

		if _, err := repo.IncrementTierSold(ctx, "EVT001", 0); err != domain.ErrTierSoldOut {
			t.Fatalf("expected ErrTierSoldOut, got %v", err)
		}
		if _, err := repo.IncrementTierSold(ctx, "EVT001", 9); err != domain.ErrTierNotFound {
			t.Fatalf("expected ErrTierNotFound, got %v", err)
		}
	})

	t.Run("ListAttendees preserves registration order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		seedEvent(t, ctx, 10)

		for _, attendee := range []string{"carol", "alice", "bob"} {
			err := repo.CreateRegistration(ctx, domain.Registration{
				EventID:   "EVT001",
				Attendee:  attendee,
				TierID:    0,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				t.Fatalf("create %s: %v", attendee, err)
			}
		}

		attendees, err := repo.ListAttendees(ctx, "EVT001")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if !reflect.DeepEqual(attendees, []string{"carol", "alice", "bob"}) {
			t.Fatalf("unexpected order: %v", attendees)
		}
	})

	t.Run("GetEventForUpdate locks inside a transaction", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		seedEvent(t, ctx, 10)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			event, err := repo.GetEventForUpdate(txCtx, "EVT001")
			if err != nil {
				return err
			}
			if event.ID != "EVT001" || len(event.Tiers) != 1 {
				t.Fatalf("unexpected event: %+v", event)
			}
			_, err = repo.GetEventForUpdate(txCtx, "MISSING")
			if err != domain.ErrEventNotFound {
				t.Fatalf("expected ErrEventNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
	})
}
