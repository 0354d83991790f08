package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bilancio/internal/core"
)

const dateLayout = "2006-01-02"

// InsertTransaction persists a validated transaction and returns its id.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var dueDate sql.NullString
	if !t.DueDate.IsZero() {
		dueDate = sql.NullString{String: t.DueDate.Format(dateLayout), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (tx_date, month_id, amount_cents, category, subcategory,
			payment_method, bank_account_id, credit_card_id,
			statement_month, due_month, due_date, note, tx_type, source_kind, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Date.Format(dateLayout), string(t.MonthID), t.Amount.Cents,
		string(t.Category), nullStr(t.Subcategory), string(t.PaymentMethod),
		nullID(t.BankAccountID), nullID(t.CreditCardID),
		nullMonth(t.StatementMonth), nullMonth(t.DueMonth), dueDate,
		t.Note, string(t.Type), nullStr(t.SourceKind), nullID(t.SourceID))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return res.LastInsertId()
}

// ListTransactions returns the transactions whose cash month is m, in date
// order.
func (r *Repository) ListTransactions(ctx context.Context, m core.MonthID) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tx_date, month_id, amount_cents, category, subcategory,
			payment_method, bank_account_id, credit_card_id,
			statement_month, due_month, due_date, note, tx_type, source_kind, source_id
		FROM transactions
		WHERE month_id = ?
		ORDER BY tx_date, category, subcategory`, string(m))
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", m, err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var t core.Transaction
	var txDate, monthID, category, method, txType string
	var subcategory, stmtMonth, dueMonth, dueDate, sourceKind sql.NullString
	var accountID, cardID, sourceID sql.NullInt64

	if err := rows.Scan(&t.ID, &txDate, &monthID, &t.Amount.Cents, &category, &subcategory,
		&method, &accountID, &cardID, &stmtMonth, &dueMonth, &dueDate, &t.Note, &txType,
		&sourceKind, &sourceID); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction row: %w", err)
	}

	parsed, err := time.Parse(dateLayout, txDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", txDate, err)
	}
	t.Date = parsed
	t.MonthID = core.MonthID(monthID)
	t.Category = core.Category(category)
	t.Subcategory = subcategory.String
	t.PaymentMethod = core.PaymentMethod(method)
	t.BankAccountID = accountID.Int64
	t.CreditCardID = cardID.Int64
	t.StatementMonth = core.MonthID(stmtMonth.String)
	t.DueMonth = core.MonthID(dueMonth.String)
	if dueDate.Valid {
		if d, err := time.Parse(dateLayout, dueDate.String); err == nil {
			t.DueDate = d
		}
	}
	t.Type = core.TxType(txType)
	t.SourceKind = sourceKind.String
	t.SourceID = sourceID.Int64
	return t, nil
}

// SumMonth returns the net signed total of all transactions whose cash month
// is m.
func (r *Repository) SumMonth(ctx context.Context, m core.MonthID) (int64, error) {
	var net int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE month_id = ?`,
		string(m)).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("sum month %s: %w", m, err)
	}
	return net, nil
}

// SumAccountMonth returns the cash effect of month m on one account: direct
// bank transactions posted in m, plus credit-card transactions due in m on
// cards the account owns. A card purchase never hits a bank balance in its
// own month; only its due-month aggregate does.
func (r *Repository) SumAccountMonth(ctx context.Context, m core.MonthID, accountID int64) (int64, error) {
	var direct int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM transactions
		WHERE month_id = ? AND bank_account_id = ?`,
		string(m), accountID).Scan(&direct)
	if err != nil {
		return 0, fmt.Errorf("sum direct for (%s, %d): %w", m, accountID, err)
	}

	var cardDue int64
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.amount_cents), 0)
		FROM transactions t
		JOIN credit_cards c ON c.id = t.credit_card_id
		WHERE t.due_month = ? AND c.bank_account_id = ?`,
		string(m), accountID).Scan(&cardDue)
	if err != nil {
		return 0, fmt.Errorf("sum card due for (%s, %d): %w", m, accountID, err)
	}

	return direct + cardDue, nil
}

// SumCategoryMonth returns the net total for a category (optionally narrowed
// to a subcategory) within month m.
func (r *Repository) SumCategoryMonth(ctx context.Context, m core.MonthID, cat core.Category, subcategory string) (int64, error) {
	var total int64
	var err error
	if subcategory == "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount_cents), 0)
			FROM transactions WHERE month_id = ? AND category = ?`,
			string(m), string(cat)).Scan(&total)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount_cents), 0)
			FROM transactions WHERE month_id = ? AND category = ? AND subcategory = ?`,
			string(m), string(cat), subcategory).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("sum category %s for %s: %w", cat, m, err)
	}
	return total, nil
}

// CategoryTotals returns net totals per category for month m.
func (r *Repository) CategoryTotals(ctx context.Context, m core.MonthID) (map[core.Category]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, COALESCE(SUM(amount_cents), 0)
		FROM transactions WHERE month_id = ?
		GROUP BY category`, string(m))
	if err != nil {
		return nil, fmt.Errorf("category totals for %s: %w", m, err)
	}
	defer rows.Close()

	totals := make(map[core.Category]int64)
	for rows.Next() {
		var cat string
		var total int64
		if err := rows.Scan(&cat, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[core.Category(cat)] = total
	}
	return totals, rows.Err()
}

// ExpandedSourceIDs returns the template ids of kind that already generated a
// transaction for month m.
func (r *Repository) ExpandedSourceIDs(ctx context.Context, m core.MonthID, kind core.TemplateKind) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT source_id FROM transactions
		WHERE month_id = ? AND source_kind = ? AND source_id IS NOT NULL`,
		string(m), string(kind))
	if err != nil {
		return nil, fmt.Errorf("expanded sources for %s: %w", m, err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan source id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// HasCardChargesDueAfter reports whether any card owned by the account has
// charges whose due month falls strictly after m, an in-flight statement
// that would go unpaid if the account retired at m.
func (r *Repository) HasCardChargesDueAfter(ctx context.Context, accountID int64, m core.MonthID) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN credit_cards c ON c.id = t.credit_card_id
		WHERE c.bank_account_id = ? AND t.due_month > ?`,
		accountID, string(m)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("card charges due after %s for %d: %w", m, accountID, err)
	}
	return n > 0, nil
}
