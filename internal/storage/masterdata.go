package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

// CreateBankAccount inserts an account row and returns its id.
func (r *Repository) CreateBankAccount(ctx context.Context, a core.BankAccount) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (name, active, effective_from_month, effective_to_month)
		VALUES (?, ?, ?, ?)`,
		a.Name, a.Active, string(a.EffectiveFrom), nullMonth(a.EffectiveTo))
	if err != nil {
		return 0, fmt.Errorf("create bank account: %w", err)
	}
	return res.LastInsertId()
}

// GetBankAccount loads one account by id.
func (r *Repository) GetBankAccount(ctx context.Context, id int64) (core.BankAccount, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, active, effective_from_month, effective_to_month
		FROM bank_accounts WHERE id = ?`, id)

	var a core.BankAccount
	var from string
	var to sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.Active, &from, &to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BankAccount{}, core.ErrNotFound
		}
		return core.BankAccount{}, fmt.Errorf("get bank account %d: %w", id, err)
	}
	a.EffectiveFrom = core.MonthID(from)
	a.EffectiveTo = core.MonthID(to.String)
	return a, nil
}

// UpdateBankAccount rewrites an account's mutable fields.
func (r *Repository) UpdateBankAccount(ctx context.Context, a core.BankAccount) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bank_accounts
		SET name = ?, active = ?, effective_from_month = ?, effective_to_month = ?
		WHERE id = ?`,
		a.Name, a.Active, string(a.EffectiveFrom), nullMonth(a.EffectiveTo), a.ID)
	if err != nil {
		return fmt.Errorf("update bank account %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListBankAccounts returns all accounts, retired ones included.
func (r *Repository) ListBankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, active, effective_from_month, effective_to_month
		FROM bank_accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ActiveBankAccountsForMonth returns accounts whose effective range covers
// the month.
func (r *Repository) ActiveBankAccountsForMonth(ctx context.Context, m core.MonthID) ([]core.BankAccount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, active, effective_from_month, effective_to_month
		FROM bank_accounts
		WHERE active = 1
		  AND effective_from_month <= ?
		  AND (effective_to_month IS NULL OR effective_to_month >= ?)
		ORDER BY name`, string(m), string(m))
	if err != nil {
		return nil, fmt.Errorf("active accounts for %s: %w", m, err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func collectAccounts(rows *sql.Rows) ([]core.BankAccount, error) {
	var accounts []core.BankAccount
	for rows.Next() {
		var a core.BankAccount
		var from string
		var to sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &a.Active, &from, &to); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		a.EffectiveFrom = core.MonthID(from)
		a.EffectiveTo = core.MonthID(to.String)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateCreditCard inserts a card row and returns its id.
func (r *Repository) CreateCreditCard(ctx context.Context, c core.CreditCard) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO credit_cards (name, bank_account_id, statement_close_day, due_day,
			active, effective_from_month, effective_to_month)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.BankAccountID, nullDay(c.StatementCloseDay), nullDay(c.DueDay),
		c.Active, string(c.EffectiveFrom), nullMonth(c.EffectiveTo))
	if err != nil {
		return 0, fmt.Errorf("create credit card: %w", err)
	}
	return res.LastInsertId()
}

// GetCreditCard loads one card by id.
func (r *Repository) GetCreditCard(ctx context.Context, id int64) (core.CreditCard, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, bank_account_id, statement_close_day, due_day,
			active, effective_from_month, effective_to_month
		FROM credit_cards WHERE id = ?`, id)

	var c core.CreditCard
	var closeDay, dueDay sql.NullInt64
	var from string
	var to sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.BankAccountID, &closeDay, &dueDay, &c.Active, &from, &to); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CreditCard{}, core.ErrNotFound
		}
		return core.CreditCard{}, fmt.Errorf("get credit card %d: %w", id, err)
	}
	c.StatementCloseDay = int(closeDay.Int64)
	c.DueDay = int(dueDay.Int64)
	c.EffectiveFrom = core.MonthID(from)
	c.EffectiveTo = core.MonthID(to.String)
	return c, nil
}

// UpdateCreditCard rewrites a card's mutable fields.
func (r *Repository) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE credit_cards
		SET name = ?, bank_account_id = ?, statement_close_day = ?, due_day = ?,
			active = ?, effective_from_month = ?, effective_to_month = ?
		WHERE id = ?`,
		c.Name, c.BankAccountID, nullDay(c.StatementCloseDay), nullDay(c.DueDay),
		c.Active, string(c.EffectiveFrom), nullMonth(c.EffectiveTo), c.ID)
	if err != nil {
		return fmt.Errorf("update credit card %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListCreditCards returns all cards, retired ones included.
func (r *Repository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, bank_account_id, statement_close_day, due_day,
			active, effective_from_month, effective_to_month
		FROM credit_cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		var closeDay, dueDay sql.NullInt64
		var from string
		var to sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.BankAccountID, &closeDay, &dueDay, &c.Active, &from, &to); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		c.StatementCloseDay = int(closeDay.Int64)
		c.DueDay = int(dueDay.Int64)
		c.EffectiveFrom = core.MonthID(from)
		c.EffectiveTo = core.MonthID(to.String)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// CardsOwnedBy returns the cards billed against one account.
func (r *Repository) CardsOwnedBy(ctx context.Context, accountID int64) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, bank_account_id, statement_close_day, due_day,
			active, effective_from_month, effective_to_month
		FROM credit_cards WHERE bank_account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("cards owned by %d: %w", accountID, err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		var c core.CreditCard
		var closeDay, dueDay sql.NullInt64
		var from string
		var to sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.BankAccountID, &closeDay, &dueDay, &c.Active, &from, &to); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		c.StatementCloseDay = int(closeDay.Int64)
		c.DueDay = int(dueDay.Int64)
		c.EffectiveFrom = core.MonthID(from)
		c.EffectiveTo = core.MonthID(to.String)
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
