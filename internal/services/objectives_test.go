package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"bilancio/internal/core"
)

func TestEvaluateAgainstIncome(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	if _, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:   core.CategoryVariable,
		Percentage: 20,
	}, false); err != nil {
		t.Fatalf("set objective: %v", err)
	}

	env.mustRecord(t, bankTx(jan, 2, 200000, core.CategoryIncome, account.ID))   // 2000.00
	env.mustRecord(t, bankTx(jan, 10, -30000, core.CategoryVariable, account.ID)) // 300.00 spent

	results, err := env.evaluator.Evaluate(ctx, jan)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	res := results[0]
	if !res.Defined {
		t.Fatal("result should be defined with positive income")
	}
	if math.Abs(res.RealizedPct-15) > 1e-9 {
		t.Errorf("realized = %v%%, want 15%%", res.RealizedPct)
	}
	if math.Abs(res.DeltaPct-(-5)) > 1e-9 {
		t.Errorf("delta = %v points, want -5", res.DeltaPct)
	}
	if res.RealizedCents != 30000 {
		t.Errorf("realized cents = %d, want 30000", res.RealizedCents)
	}
}

func TestEvaluateUndefinedWithoutIncome(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	if _, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:   core.CategoryFixed,
		Percentage: 40,
	}, false); err != nil {
		t.Fatalf("set objective: %v", err)
	}
	env.mustRecord(t, bankTx(jan, 10, -50000, core.CategoryFixed, account.ID))

	results, err := env.evaluator.Evaluate(ctx, jan)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Defined {
		t.Fatal("percentages must be undefined when the month has no income")
	}
	if results[0].RealizedCents != 50000 {
		t.Errorf("realized cents = %d, want 50000", results[0].RealizedCents)
	}
}

func TestEvaluateSubcategoryScope(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	if _, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:    core.CategoryVariable,
		Subcategory: "Groceries",
		Percentage:  10,
	}, false); err != nil {
		t.Fatalf("set objective: %v", err)
	}

	env.mustRecord(t, bankTx(jan, 2, 100000, core.CategoryIncome, account.ID))
	groceries := bankTx(jan, 5, -8000, core.CategoryVariable, account.ID)
	groceries.Subcategory = "Groceries"
	env.mustRecord(t, groceries)
	env.mustRecord(t, bankTx(jan, 6, -20000, core.CategoryVariable, account.ID)) // other variable spend

	results, err := env.evaluator.Evaluate(ctx, jan)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if results[0].RealizedCents != 8000 {
		t.Errorf("subcategory realized = %d, want 8000 (must not include other variable spend)", results[0].RealizedCents)
	}
}

func TestSetObjectiveDuplicateAndReplace(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()

	if _, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:   core.CategorySavings,
		Percentage: 10,
	}, false); err != nil {
		t.Fatalf("set objective: %v", err)
	}

	_, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:   core.CategorySavings,
		Percentage: 15,
	}, false)
	if !errors.Is(err, core.ErrDuplicateObjective) {
		t.Fatalf("duplicate = %v, want ErrDuplicateObjective", err)
	}

	if _, err := env.registry.SetObjective(ctx, core.BudgetObjective{
		Category:   core.CategorySavings,
		Percentage: 15,
	}, true); err != nil {
		t.Fatalf("replace: %v", err)
	}

	active, err := env.registry.Objectives(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("active objectives = %d, want 1 (old row retired)", len(active))
	}
	if active[0].Percentage != 15 {
		t.Fatalf("percentage = %v, want 15", active[0].Percentage)
	}
}
