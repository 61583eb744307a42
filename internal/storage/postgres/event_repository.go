package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *EventRepository) EventExists(ctx context.Context, eventID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	return loadEvent(ctx, dbFrom(ctx, r.pool), eventID, false)
}

// GetEventForUpdate locks the event row. Every mutation of an event or its
// tiers takes this lock first, so concurrent writers serialize on it.
func (r *EventRepository) GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error) {
	return loadEvent(ctx, dbFrom(ctx, r.pool), eventID, true)
}

func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	db := dbFrom(ctx, r.pool)

	const stmt = `
INSERT INTO events (id, organizer, name, description, venue, starts_at, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := db.Exec(ctx, stmt,
		event.ID,
		event.Organizer,
		event.Name,
		event.Description,
		event.Venue,
		event.StartsAt,
		event.Status,
		event.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEventAlreadyExists
		}
		return fmt.Errorf("create event: %w", err)
	}

	for _, tier := range event.Tiers {
		if err := upsertTier(ctx, db, event.ID, tier); err != nil {
			return err
		}
	}
	return nil
}

// UpdateEvent rewrites the event row and upserts every tier. Callers hold
// the row lock from GetEventForUpdate.
func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) error {
	db := dbFrom(ctx, r.pool)

	const stmt = `
UPDATE events
SET organizer = $2, name = $3, description = $4, venue = $5, starts_at = $6, status = $7
WHERE id = $1`

	tag, err := db.Exec(ctx, stmt,
		event.ID,
		event.Organizer,
		event.Name,
		event.Description,
		event.Venue,
		event.StartsAt,
		event.Status,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}

	for _, tier := range event.Tiers {
		if err := upsertTier(ctx, db, event.ID, tier); err != nil {
			return err
		}
	}
	return nil
}

// ListEventIDs returns every event id in creation order.
func (r *EventRepository) ListEventIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM events ORDER BY seq ASC`
	return listIDs(ctx, dbFrom(ctx, r.pool), query)
}

func (r *EventRepository) ListOrganizerEventIDs(ctx context.Context, organizer string) ([]string, error) {
	const query = `SELECT id FROM events WHERE organizer = $1 ORDER BY seq ASC`
	return listIDs(ctx, dbFrom(ctx, r.pool), query, organizer)
}

func loadEvent(ctx context.Context, db querier, eventID string, lock bool) (domain.Event, error) {
	query := `
SELECT id, organizer, name, description, venue, starts_at, status, created_at
FROM events
WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var event domain.Event
	err := db.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.Organizer,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.StartsAt,
		&event.Status,
		&event.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}

	tiers, err := loadTiers(ctx, db, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	event.Tiers = tiers
	return event, nil
}

func loadTiers(ctx context.Context, db querier, eventID string) ([]domain.TicketTier, error) {
	const query = `
SELECT tier_id, name, price, capacity, sold
FROM ticket_tiers
WHERE event_id = $1
ORDER BY tier_id ASC`

	rows, err := db.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	defer rows.Close()

	var tiers []domain.TicketTier
	for rows.Next() {
		var tier domain.TicketTier
		if err := rows.Scan(&tier.TierID, &tier.Name, &tier.Price, &tier.Capacity, &tier.Sold); err != nil {
			return nil, fmt.Errorf("scan tier: %w", err)
		}
		tiers = append(tiers, tier)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tiers: %w", rows.Err())
	}
	return tiers, nil
}

func upsertTier(ctx context.Context, db querier, eventID string, tier domain.TicketTier) error {
	const stmt = `
INSERT INTO ticket_tiers (event_id, tier_id, name, price, capacity, sold)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (event_id, tier_id)
DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, capacity = EXCLUDED.capacity, sold = EXCLUDED.sold`

	if _, err := db.Exec(ctx, stmt, eventID, tier.TierID, tier.Name, tier.Price, tier.Capacity, tier.Sold); err != nil {
		return fmt.Errorf("upsert tier: %w", err)
	}
	return nil
}

func listIDs(ctx context.Context, db querier, query string, args ...any) ([]string, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate ids: %w", rows.Err())
	}
	return ids, nil
}
