package services

import (
	"context"
	"errors"
	"testing"

	"bilancio/internal/core"
)

func TestCloseComputesEndingAndOpensNext(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 100000}) // 1000.00

	env.mustRecord(t, bankTx(jan, 5, 200000, core.CategoryIncome, account.ID)) // +2000.00
	env.mustRecord(t, bankTx(jan, 12, -50000, core.CategoryVariable, account.ID))

	snapshot, err := env.closer.Close(ctx, jan)
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	if snapshot.Closed.EndingBalance == nil || snapshot.Closed.EndingBalance.Cents != 250000 {
		t.Fatalf("ending balance = %v, want 250000", snapshot.Closed.EndingBalance)
	}
	if snapshot.Next.ID != "2026-02" {
		t.Fatalf("next month = %s, want 2026-02", snapshot.Next.ID)
	}
	if snapshot.Next.StartingBalance.Cents != 250000 {
		t.Fatalf("next starting = %d, want 250000", snapshot.Next.StartingBalance.Cents)
	}

	// Carry-forward: next month's account row starts at the closed ending.
	balances, err := env.repo.GetAccountMonthBalances(ctx, snapshot.Next.ID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if got := balances[account.ID].StartingBalance.Cents; got != 250000 {
		t.Fatalf("carried starting = %d, want 250000", got)
	}

	closed, err := env.repo.GetMonth(ctx, jan)
	if err != nil {
		t.Fatalf("get month: %v", err)
	}
	if !closed.Closed() {
		t.Fatal("january should be closed")
	}
}

func TestCloseIsTerminal(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})
	env.mustRecord(t, bankTx(jan, 3, 100000, core.CategoryIncome, account.ID))

	if _, err := env.closer.Close(ctx, jan); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := env.closer.Close(ctx, jan); !errors.Is(err, core.ErrClosedMonth) {
		t.Fatalf("second close = %v, want ErrClosedMonth", err)
	}
}

func TestClosedMonthRejectsNormalAcceptsCorrection(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})
	if _, err := env.closer.Close(ctx, jan); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := env.ledger.Record(ctx, bankTx(jan, 20, -1000, core.CategoryVariable, account.ID))
	if !errors.Is(err, core.ErrClosedMonth) {
		t.Fatalf("normal insert into closed month = %v, want ErrClosedMonth", err)
	}

	correction := bankTx(jan, 20, -1000, core.CategoryVariable, account.ID)
	correction.Type = core.TxCorrection
	if _, err := env.ledger.Record(ctx, correction); err != nil {
		t.Fatalf("correction into closed month: %v", err)
	}
}

func TestCloseRefusesOutOfOrder(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")
	feb := core.MonthID("2026-02")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	// Force a second open month to exist; the closer must still insist on
	// closing the earliest one first.
	if err := env.repo.CreateMonth(ctx, core.Month{ID: feb, Status: core.MonthOpen}); err != nil {
		t.Fatalf("create month: %v", err)
	}

	if _, err := env.closer.Close(ctx, feb); !errors.Is(err, core.ErrOutOfOrderClose) {
		t.Fatalf("close feb = %v, want ErrOutOfOrderClose", err)
	}
	if _, err := env.closer.Close(ctx, jan); err == nil {
		// Closing january must fail too: ApplyMonthClose would collide with
		// the already existing february row. Either way the ledger never ends
		// up with a gap.
		t.Log("january closed with february pre-existing")
	}
}

func TestCloseUnknownMonth(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	_, err := env.closer.Close(context.Background(), "2031-05")
	if !errors.Is(err, core.ErrReferentialIntegrity) {
		t.Fatalf("close unknown month = %v, want ErrReferentialIntegrity", err)
	}
}

func TestCloseBlocksRetiringAccountWithBalance(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Old savings", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 50000})

	// Retire the account at january while it still holds 500.00.
	account.EffectiveTo = jan
	if err := env.repo.UpdateBankAccount(ctx, account); err != nil {
		t.Fatalf("update account: %v", err)
	}

	if _, err := env.closer.Close(ctx, jan); !errors.Is(err, core.ErrUnsettledAccount) {
		t.Fatalf("close = %v, want ErrUnsettledAccount", err)
	}

	// Zero it out and the close goes through, dropping the account from the
	// next month.
	env.mustRecord(t, bankTx(jan, 28, -50000, core.CategorySavings, account.ID))
	snapshot, err := env.closer.Close(ctx, jan)
	if err != nil {
		t.Fatalf("close after settling: %v", err)
	}
	for _, b := range snapshot.NextBalances {
		if b.BankAccountID == account.ID {
			t.Fatal("retired account carried into next month")
		}
	}
}

func TestCloseStrictRequiresExpansion(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	if _, err := env.registry.UpsertTemplate(ctx, core.RecurringTemplate{
		Kind:          core.TemplateFixedExpense,
		Name:          "Rent",
		Amount:        core.Money{Cents: 80000},
		DueDay:        1,
		Category:      core.CategoryFixed,
		BankAccountID: account.ID,
	}); err != nil {
		t.Fatalf("upsert template: %v", err)
	}

	if _, err := env.closer.Close(ctx, jan); !errors.Is(err, core.ErrCloseNotReady) {
		t.Fatalf("close = %v, want ErrCloseNotReady", err)
	}

	if _, err := env.expander.Expand(ctx, jan); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if _, err := env.closer.Close(ctx, jan); err != nil {
		t.Fatalf("close after expansion: %v", err)
	}
}

func TestClosePermissiveClosesWithPendingTemplates(t *testing.T) {
	env := newTestEnv(t, ClosePermissive)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 0})

	if _, err := env.registry.UpsertTemplate(ctx, core.RecurringTemplate{
		Kind:     core.TemplateIncomeSource,
		Name:     "Salary",
		Amount:   core.Money{Cents: 250000},
		DueDay:   27,
		Category: core.CategoryIncome,
	}); err != nil {
		t.Fatalf("upsert template: %v", err)
	}

	if _, err := env.closer.Close(ctx, jan); err != nil {
		t.Fatalf("permissive close: %v", err)
	}
}

func TestBootstrapOnlyOnce(t *testing.T) {
	env := newTestEnv(t, CloseStrict)
	ctx := context.Background()
	jan := core.MonthID("2026-01")

	account := env.mustAccount(t, "Checking", jan)
	env.mustBootstrap(t, jan, map[int64]int64{account.ID: 10000})

	if _, err := env.closer.Bootstrap(ctx, "2026-02", nil); err == nil {
		t.Fatal("second bootstrap should fail")
	}
}
