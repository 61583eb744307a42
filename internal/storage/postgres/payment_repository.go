package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PaymentRepository) GetConfig(ctx context.Context) (domain.EscrowConfig, bool, error) {
	const query = `SELECT admin, token FROM payments_config WHERE id = 1`

	var cfg domain.EscrowConfig
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query).Scan(&cfg.Admin, &cfg.Token)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.EscrowConfig{}, false, nil
		}
		return domain.EscrowConfig{}, false, fmt.Errorf("get payments config: %w", err)
	}
	return cfg, true, nil
}

func (r *PaymentRepository) InitConfig(ctx context.Context, cfg domain.EscrowConfig) error {
	const stmt = `
INSERT INTO payments_config (id, admin, token)
VALUES (1, $1, $2)
ON CONFLICT (id) DO NOTHING`

	if _, err := dbFrom(ctx, r.pool).Exec(ctx, stmt, cfg.Admin, cfg.Token); err != nil {
		return fmt.Errorf("init payments config: %w", err)
	}
	return nil
}

// NextPaymentID returns the next value of the durable payment counter,
// starting at 1.
func (r *PaymentRepository) NextPaymentID(ctx context.Context) (int64, error) {
	return nextCounter(ctx, dbFrom(ctx, r.pool), "payment_id")
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, payment domain.PaymentRecord) error {
	const stmt = `
INSERT INTO payments (id, event_id, payer, amount, token, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := dbFrom(ctx, r.pool).Exec(ctx, stmt,
		payment.ID,
		payment.EventID,
		payment.Payer,
		payment.Amount,
		payment.Token,
		payment.Status,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, paymentID int64) (domain.PaymentRecord, error) {
	const query = `
SELECT id, event_id, payer, amount, token, status, created_at
FROM payments
WHERE id = $1`

	var p domain.PaymentRecord
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, paymentID).Scan(
		&p.ID,
		&p.EventID,
		&p.Payer,
		&p.Amount,
		&p.Token,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.PaymentRecord{}, domain.ErrPaymentNotFound
		}
		return domain.PaymentRecord{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListEventPayments returns the event's payment ids in payment order.
func (r *PaymentRepository) ListEventPayments(ctx context.Context, eventID string) ([]int64, error) {
	const query = `SELECT id FROM payments WHERE event_id = $1 ORDER BY id ASC`
	return listInt64s(ctx, dbFrom(ctx, r.pool), query, eventID)
}

func (r *PaymentRepository) AddEventRevenue(ctx context.Context, eventID string, amount int64) error {
	const stmt = `
INSERT INTO event_revenue (event_id, total)
VALUES ($1, $2)
ON CONFLICT (event_id)
DO UPDATE SET total = event_revenue.total + EXCLUDED.total`

	if _, err := dbFrom(ctx, r.pool).Exec(ctx, stmt, eventID, amount); err != nil {
		return fmt.Errorf("add event revenue: %w", err)
	}
	return nil
}

// GetEventRevenue returns zero for events that never received a payment.
func (r *PaymentRepository) GetEventRevenue(ctx context.Context, eventID string) (int64, error) {
	const query = `SELECT total FROM event_revenue WHERE event_id = $1`

	var total int64
	err := dbFrom(ctx, r.pool).QueryRow(ctx, query, eventID).Scan(&total)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get event revenue: %w", err)
	}
	return total, nil
}

// nextCounter atomically advances a named durable counter and returns the
// new value. The first call for a name yields 1.
func nextCounter(ctx context.Context, db querier, name string) (int64, error) {
	const stmt = `
INSERT INTO counters (name, value)
VALUES ($1, 1)
ON CONFLICT (name)
DO UPDATE SET value = counters.value + 1
RETURNING value`

	var value int64
	if err := db.QueryRow(ctx, stmt, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("next counter %s: %w", name, err)
	}
	return value, nil
}

func listInt64s(ctx context.Context, db querier, query string, args ...any) ([]int64, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
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
