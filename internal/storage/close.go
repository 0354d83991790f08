package storage

import (
	"context"
	"fmt"

	"bilancio/internal/core"
)

// ApplyMonthClose commits a computed close snapshot as one transaction:
// the closing month's status and ending balances, the per-account ending
// balances, the next month row and its carry-forward starting balances.
// Either everything lands or nothing does.
func (r *Repository) ApplyMonthClose(ctx context.Context, s core.CloseSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin month close: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE months SET ending_balance_cents = ?, status = 'closed'
		WHERE month_id = ? AND status = 'open'`,
		s.Closed.EndingBalance.Cents, string(s.Closed.ID))
	if err != nil {
		return fmt.Errorf("close month %s: %w", s.Closed.ID, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return fmt.Errorf("close month %s: %w", s.Closed.ID, core.ErrClosedMonth)
	}

	for _, b := range s.ClosedBalances {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO account_month_balances (month_id, bank_account_id, starting_balance_cents, ending_balance_cents)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(month_id, bank_account_id)
			DO UPDATE SET starting_balance_cents = excluded.starting_balance_cents,
				ending_balance_cents = excluded.ending_balance_cents`,
			string(b.MonthID), b.BankAccountID, b.StartingBalance.Cents, b.EndingBalance.Cents)
		if err != nil {
			return fmt.Errorf("write ending balance (%s, %d): %w", b.MonthID, b.BankAccountID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO months (month_id, starting_balance_cents, status)
		VALUES (?, ?, 'open')`,
		string(s.Next.ID), s.Next.StartingBalance.Cents)
	if err != nil {
		return fmt.Errorf("open next month %s: %w", s.Next.ID, err)
	}

	for _, b := range s.NextBalances {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO account_month_balances (month_id, bank_account_id, starting_balance_cents)
			VALUES (?, ?, ?)`,
			string(b.MonthID), b.BankAccountID, b.StartingBalance.Cents)
		if err != nil {
			return fmt.Errorf("seed starting balance (%s, %d): %w", b.MonthID, b.BankAccountID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit month close %s: %w", s.Closed.ID, err)
	}
	return nil
}
