package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

type testEnv struct {
	repo      *storage.Repository
	ledger    *Ledger
	expander  *Expander
	closer    *MonthCloser
	evaluator *Evaluator
	registry  *Registry
	reporter  *Reporter
}

func newTestEnv(t *testing.T, policy ClosePolicy) *testEnv {
	t.Helper()
	repo := newTestRepo(t)
	ledger := NewLedger(repo, nil)
	expander := NewExpander(repo, ledger)
	evaluator := NewEvaluator(repo)
	return &testEnv{
		repo:      repo,
		ledger:    ledger,
		expander:  expander,
		closer:    NewMonthCloser(repo, expander, nil, policy),
		evaluator: evaluator,
		registry:  NewRegistry(repo),
		reporter:  NewReporter(repo, evaluator),
	}
}

func (e *testEnv) mustAccount(t *testing.T, name string, from core.MonthID) core.BankAccount {
	t.Helper()
	account, err := e.registry.CreateBankAccount(context.Background(), core.BankAccount{
		Name:          name,
		EffectiveFrom: from,
	})
	if err != nil {
		t.Fatalf("create account %q: %v", name, err)
	}
	return account
}

func (e *testEnv) mustCard(t *testing.T, name string, owner int64, closeDay, dueDay int, from core.MonthID) core.CreditCard {
	t.Helper()
	card, err := e.registry.CreateCreditCard(context.Background(), core.CreditCard{
		Name:              name,
		BankAccountID:     owner,
		StatementCloseDay: closeDay,
		DueDay:            dueDay,
		EffectiveFrom:     from,
	})
	if err != nil {
		t.Fatalf("create card %q: %v", name, err)
	}
	return card
}

func (e *testEnv) mustBootstrap(t *testing.T, m core.MonthID, balances map[int64]int64) {
	t.Helper()
	if _, err := e.closer.Bootstrap(context.Background(), m, balances); err != nil {
		t.Fatalf("bootstrap %s: %v", m, err)
	}
}

func (e *testEnv) mustRecord(t *testing.T, tx core.Transaction) core.Transaction {
	t.Helper()
	recorded, err := e.ledger.Record(context.Background(), tx)
	if err != nil {
		t.Fatalf("record transaction: %v", err)
	}
	return recorded
}

func day(m core.MonthID, d int) time.Time { return m.DateIn(d) }

func bankTx(m core.MonthID, d int, cents int64, cat core.Category, accountID int64) core.Transaction {
	return core.Transaction{
		Date:          day(m, d),
		MonthID:       m,
		Amount:        core.Money{Cents: cents},
		Category:      cat,
		PaymentMethod: core.PaymentDebit,
		BankAccountID: accountID,
		Type:          core.TxNormal,
	}
}

func cardTx(m core.MonthID, d int, cents int64, cat core.Category, cardID int64) core.Transaction {
	return core.Transaction{
		Date:         day(m, d),
		MonthID:      m,
		Amount:       core.Money{Cents: cents},
		Category:     cat,
		CreditCardID: cardID,
		Type:         core.TxNormal,
	}
}
