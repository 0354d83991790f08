package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Expander turns active recurring templates into the month's fixed-expense and
// income transactions. Expansion is idempotent per (template, month): running
// it twice creates nothing the second time.
type Expander struct {
	repo   *storage.Repository
	ledger *Ledger
}

func NewExpander(repo *storage.Repository, ledger *Ledger) *Expander {
	return &Expander{repo: repo, ledger: ledger}
}

// ExpandReport summarizes one expansion run.
type ExpandReport struct {
	Month    core.MonthID
	Created  []core.Transaction
	Skipped  []core.RecurringTemplate // already expanded for this month
	Excluded []core.RecurringTemplate // owning account not active in this month
}

// Expand materializes every pending template into month m. Templates that
// already produced a transaction for m are reported as skipped, not errors.
func (e *Expander) Expand(ctx context.Context, m core.MonthID) (ExpandReport, error) {
	report := ExpandReport{Month: m}

	month, err := e.repo.GetMonth(ctx, m)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return report, fmt.Errorf("%w: month %s does not exist", core.ErrReferentialIntegrity, m)
		}
		return report, err
	}
	if month.Closed() {
		return report, fmt.Errorf("%w: cannot expand into %s", core.ErrClosedMonth, m)
	}

	templates, err := e.repo.ActiveTemplates(ctx, "")
	if err != nil {
		return report, err
	}

	for _, tpl := range templates {
		switch eligible, err := e.eligible(ctx, tpl, m); {
		case err != nil:
			return report, err
		case !eligible:
			report.Excluded = append(report.Excluded, tpl)
			continue
		}

		done, err := e.alreadyExpanded(ctx, tpl, m)
		if err != nil {
			return report, err
		}
		if done {
			report.Skipped = append(report.Skipped, tpl)
			continue
		}

		tx, err := e.ledger.Record(ctx, e.materialize(tpl, m))
		if err != nil {
			return report, fmt.Errorf("expand template %q into %s: %w", tpl.Name, m, err)
		}
		report.Created = append(report.Created, tx)
	}

	slog.InfoContext(ctx, "Recurrence expansion complete",
		"month", m,
		"created", len(report.Created),
		"skipped", len(report.Skipped),
		"excluded", len(report.Excluded))
	return report, nil
}

// Preview returns the transactions Expand would create for month m without
// writing anything.
func (e *Expander) Preview(ctx context.Context, m core.MonthID) ([]core.Transaction, error) {
	pending, err := e.Pending(ctx, m)
	if err != nil {
		return nil, err
	}
	preview := make([]core.Transaction, 0, len(pending))
	for _, tpl := range pending {
		preview = append(preview, e.materialize(tpl, m))
	}
	return preview, nil
}

// Pending returns the active templates that are eligible for month m and have
// not been expanded into it yet. The closer uses this as its readiness check.
func (e *Expander) Pending(ctx context.Context, m core.MonthID) ([]core.RecurringTemplate, error) {
	templates, err := e.repo.ActiveTemplates(ctx, "")
	if err != nil {
		return nil, err
	}

	var pending []core.RecurringTemplate
	for _, tpl := range templates {
		eligible, err := e.eligible(ctx, tpl, m)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}
		done, err := e.alreadyExpanded(ctx, tpl, m)
		if err != nil {
			return nil, err
		}
		if !done {
			pending = append(pending, tpl)
		}
	}
	return pending, nil
}

// eligible reports whether the template applies to month m. A template bound
// to a retired account stops generating without being edited.
func (e *Expander) eligible(ctx context.Context, tpl core.RecurringTemplate, m core.MonthID) (bool, error) {
	if tpl.BankAccountID == 0 {
		return true, nil
	}
	account, err := e.repo.GetBankAccount(ctx, tpl.BankAccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.CoversMonth(m), nil
}

func (e *Expander) alreadyExpanded(ctx context.Context, tpl core.RecurringTemplate, m core.MonthID) (bool, error) {
	expanded, err := e.repo.ExpandedSourceIDs(ctx, m, tpl.Kind)
	if err != nil {
		return false, err
	}
	return expanded[tpl.ID], nil
}

func (e *Expander) materialize(tpl core.RecurringTemplate, m core.MonthID) core.Transaction {
	amount := tpl.Amount.Cents
	note := "Fixed expense: " + tpl.Name
	if tpl.Kind == core.TemplateIncomeSource {
		note = "Income: " + tpl.Name
	} else {
		amount = -amount
	}
	return core.Transaction{
		Date:          m.DateIn(tpl.DueDay),
		MonthID:       m,
		Amount:        core.Money{Cents: amount},
		Category:      tpl.Category,
		Subcategory:   tpl.Subcategory,
		PaymentMethod: core.PaymentDebit,
		BankAccountID: tpl.BankAccountID,
		Note:          note,
		Type:          core.TxNormal,
		SourceKind:    string(tpl.Kind),
		SourceID:      tpl.ID,
	}
}
