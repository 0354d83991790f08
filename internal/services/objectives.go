package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Evaluator scores the active budget objectives against a month's ledger.
type Evaluator struct {
	repo *storage.Repository
}

func NewEvaluator(repo *storage.Repository) *Evaluator {
	return &Evaluator{repo: repo}
}

// ObjectiveResult is one objective scored for one month. Percentages are in
// percent points; Delta = realized - target, so overspending a 20% target by
// five points reads +5. When the month has no income the percentages are
// undefined and Defined is false.
type ObjectiveResult struct {
	Objective core.BudgetObjective
	Month     core.MonthID

	IncomeCents   int64
	RealizedCents int64 // absolute spend (income objectives: income received)

	Defined     bool
	RealizedPct float64
	DeltaPct    float64
}

// Evaluate scores every active objective against month m. Spend totals use
// the absolute value of the (negative) expense sum; an objective over a pair
// with no transactions scores 0%, not an error.
func (e *Evaluator) Evaluate(ctx context.Context, m core.MonthID) ([]ObjectiveResult, error) {
	objectives, err := e.repo.ActiveObjectives(ctx)
	if err != nil {
		return nil, err
	}

	income, err := e.repo.SumCategoryMonth(ctx, m, core.CategoryIncome, "")
	if err != nil {
		return nil, err
	}

	results := make([]ObjectiveResult, 0, len(objectives))
	for _, o := range objectives {
		total, err := e.repo.SumCategoryMonth(ctx, m, o.Category, o.Subcategory)
		if err != nil {
			return nil, err
		}
		realized := total
		if realized < 0 {
			realized = -realized
		}

		result := ObjectiveResult{
			Objective:     o,
			Month:         m,
			IncomeCents:   income,
			RealizedCents: realized,
		}
		if income > 0 {
			result.Defined = true
			result.RealizedPct = float64(realized) / float64(income) * 100
			result.DeltaPct = result.RealizedPct - o.Percentage
		}
		results = append(results, result)
	}
	return results, nil
}
