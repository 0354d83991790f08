package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Reporter assembles the month report consumed by the HTTP API and the
// spreadsheet exporter.
type Reporter struct {
	repo      *storage.Repository
	evaluator *Evaluator
}

func NewReporter(repo *storage.Repository, evaluator *Evaluator) *Reporter {
	return &Reporter{repo: repo, evaluator: evaluator}
}

// AccountLine is one account's balance movement within the reported month.
type AccountLine struct {
	Account       core.BankAccount
	StartingCents int64
	NetCents      int64
	EndingCents   int64 // starting + net; a projection while the month is open
}

// MonthReport is the full picture of one month: aggregate balances, per
// account movement, category totals and objective scores.
type MonthReport struct {
	Month          core.Month
	NetCents       int64
	ProjectedCents int64 // starting + net; equals the ending balance once closed
	Accounts       []AccountLine
	Categories     map[core.Category]int64
	Objectives     []ObjectiveResult
}

// Months lists all ledger months in chronological order.
func (r *Reporter) Months(ctx context.Context) ([]core.Month, error) {
	return r.repo.ListMonths(ctx)
}

// CurrentMonth returns the oldest open month.
func (r *Reporter) CurrentMonth(ctx context.Context) (core.Month, error) {
	return r.repo.OldestOpenMonth(ctx)
}

// MonthReport builds the report for month m.
func (r *Reporter) MonthReport(ctx context.Context, m core.MonthID) (MonthReport, error) {
	month, err := r.repo.GetMonth(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}

	net, err := r.repo.SumMonth(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}

	accounts, err := r.repo.ActiveBankAccountsForMonth(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}
	balances, err := r.repo.GetAccountMonthBalances(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}

	lines := make([]AccountLine, 0, len(accounts))
	for _, account := range accounts {
		accountNet, err := r.repo.SumAccountMonth(ctx, m, account.ID)
		if err != nil {
			return MonthReport{}, err
		}
		starting := balances[account.ID].StartingBalance.Cents
		lines = append(lines, AccountLine{
			Account:       account,
			StartingCents: starting,
			NetCents:      accountNet,
			EndingCents:   starting + accountNet,
		})
	}

	categories, err := r.repo.CategoryTotals(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}

	objectives, err := r.evaluator.Evaluate(ctx, m)
	if err != nil {
		return MonthReport{}, err
	}

	return MonthReport{
		Month:          month,
		NetCents:       net,
		ProjectedCents: month.StartingBalance.Cents + net,
		Accounts:       lines,
		Categories:     categories,
		Objectives:     objectives,
	}, nil
}
