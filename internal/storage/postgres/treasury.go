package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuidlZone-Labs/zicket-contract/internal/domain"
)

// Treasury is the custodial funds ledger. Each identity has one account
// row whose balance can never go negative.
type Treasury struct {
	pool *pgxpool.Pool
}

func NewTreasury(pool *pgxpool.Pool) *Treasury {
	return &Treasury{pool: pool}
}

// Move debits from and credits to atomically. A balance below the amount
// (or a missing account) fails with ErrInsufficientFunds and leaves both
// accounts untouched.
func (t *Treasury) Move(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	db := dbFrom(ctx, t.pool)

	const debit = `
UPDATE treasury_accounts
SET balance = balance - $2
WHERE account = $1 AND balance >= $2
RETURNING balance`

	var remaining int64
	err := db.QueryRow(ctx, debit, from, amount).Scan(&remaining)
	if err != nil {
		if err == pgx.ErrNoRows || isCheckViolation(err) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("debit %s: %w", from, err)
	}

	if err := credit(ctx, db, to, amount); err != nil {
		return err
	}
	return nil
}

// Deposit credits an account, creating it on first use.
func (t *Treasury) Deposit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return credit(ctx, dbFrom(ctx, t.pool), account, amount)
}

// Balance returns zero for accounts that were never funded.
func (t *Treasury) Balance(ctx context.Context, account string) (int64, error) {
	const query = `SELECT balance FROM treasury_accounts WHERE account = $1`

	var balance int64
	err := dbFrom(ctx, t.pool).QueryRow(ctx, query, account).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func credit(ctx context.Context, db querier, account string, amount int64) error {
	const stmt = `
INSERT INTO treasury_accounts (account, balance)
VALUES ($1, $2)
ON CONFLICT (account)
DO UPDATE SET balance = treasury_accounts.balance + EXCLUDED.balance`

	if _, err := db.Exec(ctx, stmt, account, amount); err != nil {
		return fmt.Errorf("credit %s: %w", account, err)
	}
	return nil
}
