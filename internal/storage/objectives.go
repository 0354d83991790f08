package storage

import (
	"context"
	"database/sql"
	"fmt"

	"bilancio/internal/core"
)

// ActiveObjectives returns the currently active budget objectives.
func (r *Repository) ActiveObjectives(ctx context.Context) ([]core.BudgetObjective, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, subcategory, percentage, active
		FROM budget_objectives
		WHERE active = 1
		ORDER BY category, subcategory`)
	if err != nil {
		return nil, fmt.Errorf("list active objectives: %w", err)
	}
	defer rows.Close()

	var objectives []core.BudgetObjective
	for rows.Next() {
		var o core.BudgetObjective
		var category string
		var subcategory sql.NullString
		if err := rows.Scan(&o.ID, &category, &subcategory, &o.Percentage, &o.Active); err != nil {
			return nil, fmt.Errorf("scan objective row: %w", err)
		}
		o.Category = core.Category(category)
		o.Subcategory = subcategory.String
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}

// ActiveObjectiveExists reports whether an active objective exists for the
// (category, subcategory) pair.
func (r *Repository) ActiveObjectiveExists(ctx context.Context, cat core.Category, subcategory string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM budget_objectives
		WHERE active = 1 AND category = ? AND COALESCE(subcategory, '') = ?`,
		string(cat), subcategory).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check active objective (%s, %q): %w", cat, subcategory, err)
	}
	return n > 0, nil
}

// ReplaceObjective retires any active objective for the pair and inserts the
// new one, preserving the old row for history. Runs in one transaction.
func (r *Repository) ReplaceObjective(ctx context.Context, o core.BudgetObjective) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace objective: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE budget_objectives SET active = 0
		WHERE active = 1 AND category = ? AND COALESCE(subcategory, '') = ?`,
		string(o.Category), o.Subcategory)
	if err != nil {
		return 0, fmt.Errorf("retire objective (%s, %q): %w", o.Category, o.Subcategory, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO budget_objectives (category, subcategory, percentage, active)
		VALUES (?, ?, ?, 1)`,
		string(o.Category), nullStr(o.Subcategory), o.Percentage)
	if err != nil {
		return 0, fmt.Errorf("insert objective (%s, %q): %w", o.Category, o.Subcategory, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace objective: %w", err)
	}
	return id, nil
}

// DeactivateObjective retires one objective by id.
func (r *Repository) DeactivateObjective(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budget_objectives SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate objective %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
