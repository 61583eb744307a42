package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RegistrationRepository) GetEventForUpdate(ctx context.Context, eventID string) (domain.Event, error) {
	return loadEvent(ctx, dbFrom(ctx, r.pool), eventID, true)
}

func (r *RegistrationRepository) EventExists(ctx context.Context, eventID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) IsRegistered(ctx context.Context, eventID, attendee string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND attendee = $2)`
	var exists bool
	if err := dbFrom(ctx, r.pool).QueryRow(ctx, query, eventID, attendee).Scan(&exists); err != nil {
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	const stmt = `
INSERT INTO registrations (event_id, attendee, tier_id, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, stmt, reg.EventID, reg.Attendee, reg.TierID, reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// IncrementTierSold bumps the sold counter only while it is below capacity
// and returns the new value. The conditional update makes oversell
// impossible even without the event row lock.
func (r *RegistrationRepository) IncrementTierSold(ctx context.Context, eventID string, tierID int) (int, error) {
	const stmt = `
UPDATE ticket_tiers
SET sold = sold + 1
WHERE event_id = $1 AND tier_id = $2 AND sold < capacity
RETURNING sold`

	db := dbFrom(ctx, r.pool)

	var sold int
	err := db.QueryRow(ctx, stmt, eventID, tierID).Scan(&sold)
	if err == nil {
		return sold, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("increment tier sold: %w", err)
	}

	const existsQuery = `SELECT EXISTS (SELECT 1 FROM ticket_tiers WHERE event_id = $1 AND tier_id = $2)`
	var exists bool
	if err := db.QueryRow(ctx, existsQuery, eventID, tierID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check tier: %w", err)
	}
	if !exists {
		return 0, domain.ErrTierNotFound
	}
	return 0, domain.ErrTierSoldOut
}

// ListAttendees returns attendees in registration order.
func (r *RegistrationRepository) ListAttendees(ctx context.Context, eventID string) ([]string, error) {
	const query = `SELECT attendee FROM registrations WHERE event_id = $1 ORDER BY position ASC`

	rows, err := dbFrom(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	attendees := []string{}
	for rows.Next() {
		var attendee string
		if err := rows.Scan(&attendee); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		attendees = append(attendees, attendee)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate attendees: %w", rows.Err())
	}
	return attendees, nil
}
