package storage

import (
	"context"
	"database/sql"
	"fmt"

	"bilancio/internal/core"
)

// CreateTemplate inserts a recurring template row and returns its id.
func (r *Repository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (kind, name, amount_cents, due_day,
			category, subcategory, bank_account_id, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(t.Kind), t.Name, t.Amount.Cents, t.DueDay,
		string(t.Category), nullStr(t.Subcategory), nullID(t.BankAccountID), t.Active)
	if err != nil {
		return 0, fmt.Errorf("create template: %w", err)
	}
	return res.LastInsertId()
}

// RetireTemplateByName retires any active template of the same kind and name,
// the first half of the upsert-and-retire flow that preserves history.
func (r *Repository) RetireTemplateByName(ctx context.Context, kind core.TemplateKind, name, subcategory string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates SET active = 0
		WHERE kind = ? AND name = ? AND COALESCE(subcategory, '') = ? AND active = 1`,
		string(kind), name, subcategory)
	if err != nil {
		return fmt.Errorf("retire template %q: %w", name, err)
	}
	return nil
}

// DeactivateTemplate retires one template by id.
func (r *Repository) DeactivateTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate template %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ActiveTemplates returns the active recurring templates, optionally filtered
// by kind (empty = all kinds), ordered by due day.
func (r *Repository) ActiveTemplates(ctx context.Context, kind core.TemplateKind) ([]core.RecurringTemplate, error) {
	query := `
		SELECT id, kind, name, amount_cents, due_day, category, subcategory, bank_account_id, active
		FROM recurring_templates WHERE active = 1`
	args := []any{}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY due_day, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	defer rows.Close()

	var templates []core.RecurringTemplate
	for rows.Next() {
		var t core.RecurringTemplate
		var kindStr, category string
		var subcategory sql.NullString
		var accountID sql.NullInt64
		if err := rows.Scan(&t.ID, &kindStr, &t.Name, &t.Amount.Cents, &t.DueDay,
			&category, &subcategory, &accountID, &t.Active); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		t.Kind = core.TemplateKind(kindStr)
		t.Category = core.Category(category)
		t.Subcategory = subcategory.String
		t.BankAccountID = accountID.Int64
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
