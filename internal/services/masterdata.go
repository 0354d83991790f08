package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Registry manages master data: bank accounts, credit cards, recurring
// templates and budget objectives. Nothing is ever deleted; retirement closes
// an effective range or flips the active flag so history keeps its references.
type Registry struct {
	repo *storage.Repository
}

func NewRegistry(repo *storage.Repository) *Registry {
	return &Registry{repo: repo}
}

// CreateBankAccount registers a new account effective from the given month.
func (g *Registry) CreateBankAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error) {
	a.Active = true
	if err := a.Validate(); err != nil {
		return core.BankAccount{}, err
	}
	id, err := g.repo.CreateBankAccount(ctx, a)
	if err != nil {
		return core.BankAccount{}, err
	}
	a.ID = id
	slog.InfoContext(ctx, "Bank account created", "id", id, "name", a.Name, "from", a.EffectiveFrom)
	return a, nil
}

// RenameBankAccount changes an account's display name.
func (g *Registry) RenameBankAccount(ctx context.Context, id int64, name string) error {
	a, err := g.repo.GetBankAccount(ctx, id)
	if err != nil {
		return err
	}
	a.Name = name
	if err := a.Validate(); err != nil {
		return err
	}
	return g.repo.UpdateBankAccount(ctx, a)
}

// RetireBankAccount closes an account's effective range at month m. It
// refuses while the account is unsettled: a nonzero running balance in m, or
// card charges on its cards still due after m.
func (g *Registry) RetireBankAccount(ctx context.Context, id int64, m core.MonthID) error {
	account, err := g.repo.GetBankAccount(ctx, id)
	if err != nil {
		return err
	}
	if !account.CoversMonth(m) {
		return fmt.Errorf("%w: account %q not active in %s", core.ErrReferentialIntegrity, account.Name, m)
	}

	balances, err := g.repo.GetAccountMonthBalances(ctx, m)
	if err != nil {
		return err
	}
	net, err := g.repo.SumAccountMonth(ctx, m, id)
	if err != nil {
		return err
	}
	if running := balances[id].StartingBalance.Cents + net; running != 0 {
		return fmt.Errorf("%w: account %q holds %d cents at %s", core.ErrUnsettledAccount, account.Name, running, m)
	}

	pendingCharges, err := g.repo.HasCardChargesDueAfter(ctx, id, m)
	if err != nil {
		return err
	}
	if pendingCharges {
		return fmt.Errorf("%w: account %q has card charges due after %s", core.ErrUnsettledAccount, account.Name, m)
	}

	account.EffectiveTo = m
	if err := g.repo.UpdateBankAccount(ctx, account); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Bank account retired", "id", id, "name", account.Name, "effective_to", m)
	return nil
}

// BankAccounts lists all accounts, retired ones included.
func (g *Registry) BankAccounts(ctx context.Context) ([]core.BankAccount, error) {
	return g.repo.ListBankAccounts(ctx)
}

// CreateCreditCard registers a card against an owning bank account.
func (g *Registry) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	c.Active = true
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	owner, err := g.repo.GetBankAccount(ctx, c.BankAccountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.CreditCard{}, fmt.Errorf("%w: owning bank account %d does not exist", core.ErrReferentialIntegrity, c.BankAccountID)
		}
		return core.CreditCard{}, err
	}
	if !owner.CoversMonth(c.EffectiveFrom) {
		return core.CreditCard{}, fmt.Errorf("%w: owning account %q not active in %s", core.ErrReferentialIntegrity, owner.Name, c.EffectiveFrom)
	}

	id, err := g.repo.CreateCreditCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, err
	}
	c.ID = id
	slog.InfoContext(ctx, "Credit card created", "id", id, "name", c.Name, "owner", owner.Name)
	return c, nil
}

// ConfigureCardCycle sets or changes a card's statement-close and due days.
// The new cycle applies to transactions recorded afterwards; existing
// annotations are never rewritten.
func (g *Registry) ConfigureCardCycle(ctx context.Context, id int64, closeDay, dueDay int) error {
	card, err := g.repo.GetCreditCard(ctx, id)
	if err != nil {
		return err
	}
	card.StatementCloseDay = closeDay
	card.DueDay = dueDay
	if err := card.Validate(); err != nil {
		return err
	}
	return g.repo.UpdateCreditCard(ctx, card)
}

// RetireCreditCard closes a card's effective range at month m. Charges
// already annotated keep flowing to the owning account on their due months.
func (g *Registry) RetireCreditCard(ctx context.Context, id int64, m core.MonthID) error {
	card, err := g.repo.GetCreditCard(ctx, id)
	if err != nil {
		return err
	}
	if !card.CoversMonth(m) {
		return fmt.Errorf("%w: card %q not active in %s", core.ErrReferentialIntegrity, card.Name, m)
	}
	card.EffectiveTo = m
	if err := g.repo.UpdateCreditCard(ctx, card); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Credit card retired", "id", id, "name", card.Name, "effective_to", m)
	return nil
}

// CreditCards lists all cards, retired ones included.
func (g *Registry) CreditCards(ctx context.Context) ([]core.CreditCard, error) {
	return g.repo.ListCreditCards(ctx)
}

// UpsertTemplate registers a recurring template, retiring any active one of
// the same kind and name first so the definition can change without losing
// the history generated under the old row.
func (g *Registry) UpsertTemplate(ctx context.Context, t core.RecurringTemplate) (core.RecurringTemplate, error) {
	t.Active = true
	if err := t.Validate(); err != nil {
		return core.RecurringTemplate{}, err
	}
	if t.BankAccountID != 0 {
		if _, err := g.repo.GetBankAccount(ctx, t.BankAccountID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.RecurringTemplate{}, fmt.Errorf("%w: bank account %d does not exist", core.ErrReferentialIntegrity, t.BankAccountID)
			}
			return core.RecurringTemplate{}, err
		}
	}

	if err := g.repo.RetireTemplateByName(ctx, t.Kind, t.Name, t.Subcategory); err != nil {
		return core.RecurringTemplate{}, err
	}
	id, err := g.repo.CreateTemplate(ctx, t)
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	t.ID = id
	slog.InfoContext(ctx, "Template upserted", "id", id, "kind", t.Kind, "name", t.Name)
	return t, nil
}

// RetireTemplate deactivates one template by id.
func (g *Registry) RetireTemplate(ctx context.Context, id int64) error {
	return g.repo.DeactivateTemplate(ctx, id)
}

// Templates lists the active templates, optionally filtered by kind.
func (g *Registry) Templates(ctx context.Context, kind core.TemplateKind) ([]core.RecurringTemplate, error) {
	return g.repo.ActiveTemplates(ctx, kind)
}

// SetObjective activates a budget objective for a (category, subcategory)
// pair. With replace false an existing active objective for the pair is a
// conflict; with replace true the old row is retired and the new one takes
// over, applying to future evaluations only.
func (g *Registry) SetObjective(ctx context.Context, o core.BudgetObjective, replace bool) (core.BudgetObjective, error) {
	o.Active = true
	if err := o.Validate(); err != nil {
		return core.BudgetObjective{}, err
	}

	if !replace {
		exists, err := g.repo.ActiveObjectiveExists(ctx, o.Category, o.Subcategory)
		if err != nil {
			return core.BudgetObjective{}, err
		}
		if exists {
			return core.BudgetObjective{}, fmt.Errorf("%w: (%s, %q)", core.ErrDuplicateObjective, o.Category, o.Subcategory)
		}
	}

	id, err := g.repo.ReplaceObjective(ctx, o)
	if err != nil {
		return core.BudgetObjective{}, err
	}
	o.ID = id
	slog.InfoContext(ctx, "Objective set", "id", id, "category", o.Category, "subcategory", o.Subcategory, "pct", o.Percentage)
	return o, nil
}

// RetireObjective deactivates one objective by id.
func (g *Registry) RetireObjective(ctx context.Context, id int64) error {
	return g.repo.DeactivateObjective(ctx, id)
}

// Objectives lists the active objectives.
func (g *Registry) Objectives(ctx context.Context) ([]core.BudgetObjective, error) {
	return g.repo.ActiveObjectives(ctx)
}
