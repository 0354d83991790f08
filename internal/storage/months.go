package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

// CreateMonth inserts a new open month.
func (r *Repository) CreateMonth(ctx context.Context, m core.Month) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO months (month_id, starting_balance_cents, status)
		VALUES (?, ?, ?)`,
		string(m.ID), m.StartingBalance.Cents, string(m.Status))
	if err != nil {
		return fmt.Errorf("create month %s: %w", m.ID, err)
	}
	return nil
}

// GetMonth loads one month by key. Returns core.ErrNotFound for unknown keys.
func (r *Repository) GetMonth(ctx context.Context, id core.MonthID) (core.Month, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT month_id, starting_balance_cents, ending_balance_cents, status
		FROM months WHERE month_id = ?`, string(id))
	return scanMonth(row)
}

func scanMonth(row *sql.Row) (core.Month, error) {
	var m core.Month
	var monthID, status string
	var ending sql.NullInt64
	if err := row.Scan(&monthID, &m.StartingBalance.Cents, &ending, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Month{}, core.ErrNotFound
		}
		return core.Month{}, fmt.Errorf("scan month: %w", err)
	}
	m.ID = core.MonthID(monthID)
	m.Status = core.MonthStatus(status)
	if ending.Valid {
		m.EndingBalance = &core.Money{Cents: ending.Int64}
	}
	return m, nil
}

// OldestOpenMonth returns the earliest open month: the ledger's "current"
// month, derived rather than stored so it cannot drift from the status field.
func (r *Repository) OldestOpenMonth(ctx context.Context) (core.Month, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT month_id, starting_balance_cents, ending_balance_cents, status
		FROM months WHERE status = 'open'
		ORDER BY month_id ASC LIMIT 1`)
	return scanMonth(row)
}

// HasOpenMonthBefore reports whether any month strictly earlier than id is
// still open.
func (r *Repository) HasOpenMonthBefore(ctx context.Context, id core.MonthID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM months WHERE status = 'open' AND month_id < ?`,
		string(id)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count open months before %s: %w", id, err)
	}
	return n > 0, nil
}

// ListMonths returns all months in chronological order.
func (r *Repository) ListMonths(ctx context.Context) ([]core.Month, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT month_id, starting_balance_cents, ending_balance_cents, status
		FROM months ORDER BY month_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var months []core.Month
	for rows.Next() {
		var m core.Month
		var monthID, status string
		var ending sql.NullInt64
		if err := rows.Scan(&monthID, &m.StartingBalance.Cents, &ending, &status); err != nil {
			return nil, fmt.Errorf("scan month row: %w", err)
		}
		m.ID = core.MonthID(monthID)
		m.Status = core.MonthStatus(status)
		if ending.Valid {
			m.EndingBalance = &core.Money{Cents: ending.Int64}
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// GetAccountMonthBalances returns the balance rows of one month keyed by
// account id.
func (r *Repository) GetAccountMonthBalances(ctx context.Context, id core.MonthID) (map[int64]core.AccountMonthBalance, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT bank_account_id, starting_balance_cents, ending_balance_cents
		FROM account_month_balances WHERE month_id = ?`, string(id))
	if err != nil {
		return nil, fmt.Errorf("get balances for %s: %w", id, err)
	}
	defer rows.Close()

	balances := make(map[int64]core.AccountMonthBalance)
	for rows.Next() {
		b := core.AccountMonthBalance{MonthID: id}
		var ending sql.NullInt64
		if err := rows.Scan(&b.BankAccountID, &b.StartingBalance.Cents, &ending); err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		if ending.Valid {
			b.EndingBalance = &core.Money{Cents: ending.Int64}
		}
		balances[b.BankAccountID] = b
	}
	return balances, rows.Err()
}

// UpsertStartingBalance seeds or replaces the starting balance of one
// (month, account) pair. Used during initial setup; month close writes its
// own rows atomically in ApplyMonthClose.
func (r *Repository) UpsertStartingBalance(ctx context.Context, id core.MonthID, accountID, cents int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_month_balances (month_id, bank_account_id, starting_balance_cents)
		VALUES (?, ?, ?)
		ON CONFLICT(month_id, bank_account_id)
		DO UPDATE SET starting_balance_cents = excluded.starting_balance_cents`,
		string(id), accountID, cents)
	if err != nil {
		return fmt.Errorf("upsert starting balance (%s, %d): %w", id, accountID, err)
	}
	return nil
}
