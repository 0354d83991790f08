package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
)

func TestRetireAccountRequiresSettlement(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Savings", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 20000})

	err := env.registry.RetireBankAccount(ctx, account.ID, jan)
	if !errors.Is(err, core.ErrUnsettledAccount) {
		t.Fatalf("retire with balance = %v, want ErrUnsettledAccount", err)
	}

	env.mustRecord(t, bankTx(jan, 10, -20000, core.CategoryVariable, account.ID))
	if err := env.registry.RetireBankAccount(ctx, account.ID, jan); err != nil {
		t.Fatalf("retire after settling: %v", err)
	}

	got, err := env.repo.GetBankAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EffectiveTo != jan {
		t.Fatalf("effective_to = %s, want %s", got.EffectiveTo, jan)
	}
	if got.CoversMonth("2026-02") {
		t.Fatal("retired account must not cover later months")
	}
	if !got.CoversMonth(jan) {
		t.Fatal("retired account still covers its final month")
	}
}

func TestRetireAccountBlockedByPendingCardCharges(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	card := env.mustCard(t, "Visa", account.ID, 25, 10, jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	// Charge due in february keeps the account pinned through january.
	env.mustRecord(t, cardTx(jan, 20, -5000, core.CategoryVariable, card.ID))

	err := env.registry.RetireBankAccount(ctx, account.ID, jan)
	if !errors.Is(err, core.ErrUnsettledAccount) {
		t.Fatalf("retire with in-flight statement = %v, want ErrUnsettledAccount", err)
	}
}

func TestCreateCardRequiresActiveOwner(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()

	_, err := env.registry.CreateCreditCard(ctx, core.CreditCard{
		Name:              "Orphan",
		BankAccountID:     42,
		StatementCloseDay: 25,
		DueDay:            10,
		EffectiveFrom:     "2026-01",
	})
	if !errors.Is(err, core.ErrReferentialIntegrity) {
		t.Fatalf("card on unknown account = %v, want ErrReferentialIntegrity", err)
	}
}

func TestCardCycleConfigValidation(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)

	// Half a cycle is rejected outright.
	_, err := env.registry.CreateCreditCard(ctx, core.CreditCard{
		Name:              "Half",
		BankAccountID:     account.ID,
		StatementCloseDay: 25,
		EffectiveFrom:     jan,
	})
	if !errors.Is(err, core.ErrInvalidCycleConfig) {
		t.Fatalf("half cycle = %v, want ErrInvalidCycleConfig", err)
	}

	card := env.mustCard(t, "Visa", account.ID, 25, 10, jan)
	if err := env.registry.ConfigureCardCycle(ctx, card.ID, 15, 0); !errors.Is(err, core.ErrInvalidCycleConfig) {
		t.Fatalf("reconfigure half cycle = %v, want ErrInvalidCycleConfig", err)
	}
	if err := env.registry.ConfigureCardCycle(ctx, card.ID, 15, 5); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
}

func TestUpsertTemplateRetiresPrevious(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()

	if _, err := env.registry.UpsertTemplate(ctx, core.RecurringTemplate{
		Kind:     core.TemplateFixedExpense,
		Name:     "Rent",
		Amount:   core.Money{Cents: 80000},
		DueDay:   1,
		Category: core.CategoryFixed,
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := env.registry.UpsertTemplate(ctx, core.RecurringTemplate{
		Kind:     core.TemplateFixedExpense,
		Name:     "Rent",
		Amount:   core.Money{Cents: 85000},
		DueDay:   1,
		Category: core.CategoryFixed,
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	templates, err := env.registry.Templates(ctx, core.TemplateFixedExpense)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("active templates = %d, want 1", len(templates))
	}
	if templates[0].Amount.Cents != 85000 {
		t.Fatalf("amount = %d, want 85000 (new definition)", templates[0].Amount.Cents)
	}
}

func TestMonthReportAssemblesBalances(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 100000})

	env.mustRecord(t, bankTx(jan, 2, 200000, core.CategoryIncome, account.ID))
	env.mustRecord(t, bankTx(jan, 12, -50000, core.CategoryVariable, account.ID))

	report, err := env.reporter.MonthReport(ctx, jan)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.NetCents != 150000 {
		t.Errorf("net = %d, want 150000", report.NetCents)
	}
	if report.ProjectedCents != 250000 {
		t.Errorf("projected = %d, want 250000", report.ProjectedCents)
	}
	if len(report.Accounts) != 1 {
		t.Fatalf("account lines = %d, want 1", len(report.Accounts))
	}
	line := report.Accounts[0]
	if line.StartingCents != 100000 || line.EndingCents != 250000 {
		t.Errorf("account line = %d -> %d, want 100000 -> 250000", line.StartingCents, line.EndingCents)
	}
	if report.Categories[core.CategoryIncome] != 200000 {
		t.Errorf("income total = %d, want 200000", report.Categories[core.CategoryIncome])
	}
}
