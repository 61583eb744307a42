package app

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
)

func TestTicketService_MintTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(status domain.EventStatus) (*TicketService, *fakeTicketRepo, *notify.MemorySink) {
		repo := newFakeTicketRepo(domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Status:    status,
		})
		sink := notify.NewMemorySink()
		svc := NewTicketService(repo, clock.NewFixed(now), newFakeVerifier(), sink)
		return svc, repo, sink
	}

	t.Run("issues sequential valid tickets", func(t *testing.T) {
		svc, repo, sink := makeSvc(domain.EventStatusActive)
		ctx := context.Background()

		first, err := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})
		if err != nil {
			t.Fatalf("mint first: %v", err)
		}
		second, err := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "bob"})
		if err != nil {
			t.Fatalf("mint second: %v", err)
		}
		if first.ID != 1 || second.ID != 2 {
			t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
		}
		if first.Status != domain.TicketStatusValid || first.Owner != "alice" || first.IssuedAt != now {
			t.Fatalf("unexpected ticket: %+v", first)
		}

		last, _ := sink.Last()
		if last.Type != notify.TypeTicketMinted {
			t.Fatalf("expected minted notification, got %v", last.Type)
		}
		payload := last.Payload.(notify.TicketMintedPayload)
		if payload.TicketID != 2 || payload.Owner != "bob" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		if len(repo.tickets) != 2 {
			t.Fatalf("expected 2 tickets, got %d", len(repo.tickets))
		}
	})

	t.Run("rejects unknown event", func(t *testing.T) {
		svc, repo, _ := makeSvc(domain.EventStatusActive)
		_, err := svc.MintTicket(context.Background(), MintInput{Organizer: "org-1", EventID: "MISSING", Owner: "alice"})
		if err != domain.ErrEventNotFound {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if len(repo.tickets) != 0 {
			t.Fatal("expected no ticket issued")
		}
	})

	t.Run("rejects caller who is not the event organizer", func(t *testing.T) {
		svc, _, _ := makeSvc(domain.EventStatusActive)
		_, err := svc.MintTicket(context.Background(), MintInput{Organizer: "org-2", EventID: "EVT001", Owner: "alice"})
		if err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects events that are not active", func(t *testing.T) {
		for _, status := range []domain.EventStatus{
			domain.EventStatusUpcoming,
			domain.EventStatusCompleted,
			domain.EventStatusCancelled,
		} {
			svc, _, _ := makeSvc(status)
			_, err := svc.MintTicket(context.Background(), MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})
			if err != domain.ErrEventNotActive {
				t.Fatalf("status %s: expected ErrEventNotActive, got %v", status, err)
			}
		}
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		svc, _, _ := makeSvc(domain.EventStatusActive)
		_, err := svc.MintTicket(context.Background(), MintInput{Organizer: "org-1", EventID: "EVT001", Owner: ""})
		if err != domain.ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestTicketService_TransferTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func() (*TicketService, *fakeTicketRepo, *notify.MemorySink) {
		repo := newFakeTicketRepo(domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Status:    domain.EventStatusActive,
		})
		sink := notify.NewMemorySink()
		svc := NewTicketService(repo, clock.NewFixed(now), newFakeVerifier(), sink)
		return svc, repo, sink
	}

	t.Run("transfers ownership exclusively", func(t *testing.T) {
		svc, _, sink := makeSvc()
		ctx := context.Background()

		ticket, err := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}

		if err := svc.TransferTicket(ctx, "alice", "bob", ticket.ID); err != nil {
			t.Fatalf("transfer: %v", err)
		}

		got, err := svc.GetTicket(ctx, ticket.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Owner != "bob" || got.Status != domain.TicketStatusValid {
			t.Fatalf("unexpected ticket after transfer: %+v", got)
		}

		aliceTickets, _ := svc.OwnerTickets(ctx, "alice")
		bobTickets, _ := svc.OwnerTickets(ctx, "bob")
		if len(aliceTickets) != 0 {
			t.Fatalf("expected alice to hold no tickets, got %v", aliceTickets)
		}
		if !reflect.DeepEqual(bobTickets, []int64{ticket.ID}) {
			t.Fatalf("expected bob to hold %d, got %v", ticket.ID, bobTickets)
		}

		last, _ := sink.Last()
		payload := last.Payload.(notify.TicketTransferredPayload)
		if payload.From != "alice" || payload.To != "bob" || payload.TicketID != ticket.ID {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		svc, _, _ := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.TransferTicket(ctx, "alice", "alice", ticket.ID); err != domain.ErrTransferToSelf {
			t.Fatalf("expected ErrTransferToSelf, got %v", err)
		}
	})

	t.Run("rejects caller who is not the owner", func(t *testing.T) {
		svc, _, _ := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.TransferTicket(ctx, "carol", "bob", ticket.ID); err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		got, _ := svc.GetTicket(ctx, ticket.ID)
		if got.Owner != "alice" {
			t.Fatalf("expected ownership unchanged, got %+v", got)
		}
	})

	t.Run("rejects transfer of non-valid tickets", func(t *testing.T) {
		svc, _, _ := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.UseTicket(ctx, "org-1", ticket.ID); err != nil {
			t.Fatalf("use: %v", err)
		}
		if err := svc.TransferTicket(ctx, "alice", "bob", ticket.ID); err != domain.ErrTicketNotTransferable {
			t.Fatalf("expected ErrTicketNotTransferable, got %v", err)
		}
	})

	t.Run("rejects unknown ticket", func(t *testing.T) {
		svc, _, _ := makeSvc()
		if err := svc.TransferTicket(context.Background(), "alice", "bob", 99); err != domain.ErrTicketNotFound {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}

func TestTicketService_UseTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func() (*TicketService, *notify.MemorySink) {
		repo := newFakeTicketRepo(domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Status:    domain.EventStatusActive,
		})
		sink := notify.NewMemorySink()
		return NewTicketService(repo, clock.NewFixed(now), newFakeVerifier(), sink), sink
	}

	t.Run("marks ticket used once", func(t *testing.T) {
		svc, sink := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.UseTicket(ctx, "org-1", ticket.ID); err != nil {
			t.Fatalf("use: %v", err)
		}
		got, _ := svc.GetTicket(ctx, ticket.ID)
		if got.Status != domain.TicketStatusUsed {
			t.Fatalf("expected used, got %s", got.Status)
		}
		last, _ := sink.Last()
		if last.Type != notify.TypeTicketUsed {
			t.Fatalf("expected used notification, got %v", last.Type)
		}

		if err := svc.UseTicket(ctx, "org-1", ticket.ID); err != domain.ErrTicketAlreadyUsed {
			t.Fatalf("expected ErrTicketAlreadyUsed, got %v", err)
		}
	})

	t.Run("rejects caller who is not the recorded organizer", func(t *testing.T) {
		svc, _ := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.UseTicket(ctx, "org-2", ticket.ID); err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if err := svc.UseTicket(ctx, "alice", ticket.ID); err != domain.ErrUnauthorized {
			t.Fatalf("owner is not the organizer: expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("cancelled ticket cannot be redeemed", func(t *testing.T) {
		svc, _ := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.CancelTicket(ctx, "alice", ticket.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if err := svc.UseTicket(ctx, "org-1", ticket.ID); err != domain.ErrEventNotActive {
			t.Fatalf("expected ErrEventNotActive, got %v", err)
		}
	})

	t.Run("rejects unknown ticket", func(t *testing.T) {
		svc, _ := makeSvc()
		if err := svc.UseTicket(context.Background(), "org-1", 99); err != domain.ErrTicketNotFound {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}

func TestTicketService_CancelTicket(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func() *TicketService {
		repo := newFakeTicketRepo(domain.Event{
			ID:        "EVT001",
			Organizer: "org-1",
			Status:    domain.EventStatusActive,
		})
		return NewTicketService(repo, clock.NewFixed(now), newFakeVerifier(), notify.NewMemorySink())
	}

	t.Run("owner voids a valid ticket", func(t *testing.T) {
		svc := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.CancelTicket(ctx, "alice", ticket.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		got, _ := svc.GetTicket(ctx, ticket.ID)
		if got.Status != domain.TicketStatusCancelled {
			t.Fatalf("expected cancelled, got %s", got.Status)
		}

		if err := svc.CancelTicket(ctx, "alice", ticket.ID); err != domain.ErrInvalidStatusTransition {
			t.Fatalf("expected ErrInvalidStatusTransition on repeat cancel, got %v", err)
		}
	})

	t.Run("only the owner may cancel", func(t *testing.T) {
		svc := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.CancelTicket(ctx, "org-1", ticket.ID); err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("used ticket cannot be cancelled", func(t *testing.T) {
		svc := makeSvc()
		ctx := context.Background()
		ticket, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

		if err := svc.UseTicket(ctx, "org-1", ticket.ID); err != nil {
			t.Fatalf("use: %v", err)
		}
		if err := svc.CancelTicket(ctx, "alice", ticket.ID); err != domain.ErrTicketAlreadyUsed {
			t.Fatalf("expected ErrTicketAlreadyUsed, got %v", err)
		}
	})
}

func TestTicketService_Lists(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeTicketRepo(domain.Event{
		ID:        "EVT001",
		Organizer: "org-1",
		Status:    domain.EventStatusActive,
	})
	svc := NewTicketService(repo, clock.NewFixed(now), newFakeVerifier(), notify.NewMemorySink())
	ctx := context.Background()

	t1, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})
	t2, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "bob"})
	t3, _ := svc.MintTicket(ctx, MintInput{Organizer: "org-1", EventID: "EVT001", Owner: "alice"})

	eventTickets, err := svc.EventTickets(ctx, "EVT001")
	if err != nil || !reflect.DeepEqual(eventTickets, []int64{t1.ID, t2.ID, t3.ID}) {
		t.Fatalf("unexpected event tickets: %v %v", eventTickets, err)
	}

	// Transfer moves the ticket to the end of the receiver's list.
	if err := svc.TransferTicket(ctx, "bob", "alice", t2.ID); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	aliceTickets, _ := svc.OwnerTickets(ctx, "alice")
	if !reflect.DeepEqual(aliceTickets, []int64{t1.ID, t3.ID, t2.ID}) {
		t.Fatalf("expected acquisition order, got %v", aliceTickets)
	}
	bobTickets, _ := svc.OwnerTickets(ctx, "bob")
	if len(bobTickets) != 0 {
		t.Fatalf("expected bob to hold nothing, got %v", bobTickets)
	}

	if _, err := svc.GetTicket(ctx, 99); err != domain.ErrTicketNotFound {
		t.Fatalf("expected ErrTicketNotFound, got %v", err)
	}
}

type fakeTicketRepo struct {
	event    domain.Event
	nextID   int64
	tickets  map[int64]domain.Ticket
	ownerSeq map[int64]int64
	seq      int64
}

func newFakeTicketRepo(event domain.Event) *fakeTicketRepo {
	return &fakeTicketRepo{
		event:    event,
		tickets:  make(map[int64]domain.Ticket),
		ownerSeq: make(map[int64]int64),
	}
}

func (f *fakeTicketRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTicketRepo) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	if eventID != f.event.ID {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return f.event, nil
}

func (f *fakeTicketRepo) NextTicketID(_ context.Context) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeTicketRepo) CreateTicket(_ context.Context, ticket domain.Ticket) error {
	f.tickets[ticket.ID] = ticket
	f.seq++
	f.ownerSeq[ticket.ID] = f.seq
	return nil
}

func (f *fakeTicketRepo) GetTicket(_ context.Context, ticketID int64) (domain.Ticket, error) {
	ticket, ok := f.tickets[ticketID]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeTicketRepo) GetTicketForUpdate(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return f.GetTicket(ctx, ticketID)
}

func (f *fakeTicketRepo) UpdateTicket(_ context.Context, ticket domain.Ticket) error {
	prev, ok := f.tickets[ticket.ID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if prev.Owner != ticket.Owner {
		f.seq++
		f.ownerSeq[ticket.ID] = f.seq
	}
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) ListOwnerTickets(_ context.Context, owner string) ([]int64, error) {
	ids := []int64{}
	for id, ticket := range f.tickets {
		if ticket.Owner == owner {
			ids = append(ids, id)
		}
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if f.ownerSeq[ids[j]] < f.ownerSeq[ids[i]] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids, nil
}

func (f *fakeTicketRepo) ListEventTickets(_ context.Context, eventID string) ([]int64, error) {
	ids := []int64{}
	for id, ticket := range f.tickets {
		if ticket.EventID == eventID {
			ids = append(ids, id)
		}
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[j] < ids[i] {
				ids[i], ids[j] = ids[j], ids[i]
			}
		}
	}
	return ids, nil
}
