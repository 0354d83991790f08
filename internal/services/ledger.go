// Package services implements the ledger engine: transaction recording,
// month closing, recurrence expansion, objective evaluation and master-data
// management, all over the SQLite repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// Ledger records transactions and aggregates them per month and account.
type Ledger struct {
	repo   *storage.Repository
	events *amqp.Client
}

func NewLedger(repo *storage.Repository, events *amqp.Client) *Ledger {
	return &Ledger{repo: repo, events: events}
}

// Record validates and posts one transaction. Credit-card transactions are
// annotated with their statement/due cycle before they enter the ledger.
// Normal-type inserts into a closed month fail with core.ErrClosedMonth;
// corrections are exempt and land in the month they correct.
func (l *Ledger) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	month, err := l.repo.GetMonth(ctx, t.MonthID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, fmt.Errorf("%w: month %s does not exist", core.ErrReferentialIntegrity, t.MonthID)
		}
		return core.Transaction{}, err
	}
	if month.Closed() && t.Type == core.TxNormal {
		return core.Transaction{}, fmt.Errorf("%w: %s accepts corrections only", core.ErrClosedMonth, t.MonthID)
	}

	switch {
	case t.CreditCardID != 0:
		card, err := l.repo.GetCreditCard(ctx, t.CreditCardID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.Transaction{}, fmt.Errorf("%w: credit card %d does not exist", core.ErrReferentialIntegrity, t.CreditCardID)
			}
			return core.Transaction{}, err
		}
		if !card.CoversMonth(t.MonthID) {
			return core.Transaction{}, fmt.Errorf("%w: credit card %q not active in %s", core.ErrReferentialIntegrity, card.Name, t.MonthID)
		}
		cycle, err := core.ResolveCardCycle(t.Date, card)
		if err != nil {
			return core.Transaction{}, err
		}
		t.StatementMonth = cycle.StatementMonth
		t.DueMonth = cycle.DueMonth
		t.DueDate = cycle.DueDate
		t.PaymentMethod = core.PaymentCreditCard

	case t.BankAccountID != 0:
		account, err := l.repo.GetBankAccount(ctx, t.BankAccountID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.Transaction{}, fmt.Errorf("%w: bank account %d does not exist", core.ErrReferentialIntegrity, t.BankAccountID)
			}
			return core.Transaction{}, err
		}
		if !account.CoversMonth(t.MonthID) {
			return core.Transaction{}, fmt.Errorf("%w: bank account %q not active in %s", core.ErrReferentialIntegrity, account.Name, t.MonthID)
		}
	}

	if t.PaymentMethod == "" {
		t.PaymentMethod = core.PaymentDebit
	}

	id, err := l.repo.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction recorded",
		"id", t.ID,
		"month", t.MonthID,
		"amount_cents", t.Amount.Cents,
		"category", t.Category,
		"type", t.Type)

	if err := l.publishRecorded(ctx, t); err != nil {
		// The transaction is persisted; event delivery is best effort.
		slog.ErrorContext(ctx, "Failed to publish transaction event", "id", t.ID, "error", err)
	}

	return t, nil
}

// Aggregate returns the net signed total of month m.
func (l *Ledger) Aggregate(ctx context.Context, m core.MonthID) (core.Money, error) {
	net, err := l.repo.SumMonth(ctx, m)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: net}, nil
}

// AggregateAccount returns the cash effect of month m on one account:
// its direct transactions plus the card statements due in m on cards it
// owns. This is the reconciliation rule that keeps card purchases off bank
// balances until their due month.
func (l *Ledger) AggregateAccount(ctx context.Context, m core.MonthID, accountID int64) (core.Money, error) {
	net, err := l.repo.SumAccountMonth(ctx, m, accountID)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: net}, nil
}

// Transactions lists the transactions posted in month m.
func (l *Ledger) Transactions(ctx context.Context, m core.MonthID) ([]core.Transaction, error) {
	return l.repo.ListTransactions(ctx, m)
}

func (l *Ledger) publishRecorded(ctx context.Context, t core.Transaction) error {
	if l.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping transaction event")
		return nil
	}
	return l.events.PublishTransactionRecorded(ctx, t.ID, string(t.MonthID), t.Amount.Cents)
}
