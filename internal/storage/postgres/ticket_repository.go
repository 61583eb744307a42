package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return loadEvent(ctx, dbFrom(ctx, r.pool), eventID, false)
}

// NextTicketID returns the next value of the durable ticket counter,
// starting at 1.
func (r *TicketRepository) NextTicketID(ctx context.Context) (int64, error) {
	return nextCounter(ctx, dbFrom(ctx, r.pool), "ticket_id")
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, organizer, owner, issued_at, status, owner_seq)
VALUES ($1, $2, $3, $4, $5, $6, nextval('ticket_ownership_seq'))`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, stmt,
		ticket.ID,
		ticket.EventID,
		ticket.Organizer,
		ticket.Owner,
		ticket.IssuedAt,
		ticket.Status,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return r.getTicket(ctx, ticketID, false)
}

// GetTicketForUpdate locks the ticket row for the length of the
// transaction. Transfers, redemptions, and cancellations all take this
// lock, so a ticket's status and owner can only change serially.
func (r *TicketRepository) GetTicketForUpdate(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return r.getTicket(ctx, ticketID, true)
}

func (r *TicketRepository) getTicket(ctx context.Context, ticketID int64, lock bool) (domain.Ticket, error) {
	query := `
SELECT id, event_id, organizer, owner, issued_at, status
FROM tickets
WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var t domain.Ticket
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, ticketID).Scan(
		&t.ID,
		&t.EventID,
		&t.Organizer,
		&t.Owner,
		&t.IssuedAt,
		&t.Status,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// UpdateTicket persists the owner and status. An ownership change advances
// the acquisition sequence so ListOwnerTickets keeps acquisition order.
func (r *TicketRepository) UpdateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
UPDATE tickets
SET owner = $2,
    status = $3,
    owner_seq = CASE WHEN owner <> $2 THEN nextval('ticket_ownership_seq') ELSE owner_seq END
WHERE id = $1`

	tag, err := dbFrom(ctx, r.pool).Exec(ctx, stmt, ticket.ID, ticket.Owner, ticket.Status)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// ListOwnerTickets returns the owner's ticket ids in acquisition order.
// The owner column is the single source of ownership truth; this is an
// indexed view over it, never a second copy.
func (r *TicketRepository) ListOwnerTickets(ctx context.Context, owner string) ([]int64, error) {
	const query = `SELECT id FROM tickets WHERE owner = $1 ORDER BY owner_seq ASC`
	return listInt64s(ctx, dbFrom(ctx, r.pool), query, owner)
}

// ListEventTickets returns the event's ticket ids in mint order.
func (r *TicketRepository) ListEventTickets(ctx context.Context, eventID string) ([]int64, error) {
	const query = `SELECT id FROM tickets WHERE event_id = $1 ORDER BY id ASC`
	return listInt64s(ctx, dbFrom(ctx, r.pool), query, eventID)
}
