package core

import (
	"fmt"
	"time"
)

// Cycle is the billing placement of a credit-card transaction: the statement
// it is grouped into and when that statement is paid from the owning account.
type Cycle struct {
	StatementMonth MonthID
	DueMonth       MonthID
	DueDate        time.Time
}

// ResolveCycle maps a transaction date onto a card's billing cycle.
//
// A purchase on or before the statement close day belongs to the statement
// closing in the purchase month; later purchases roll to the next month's
// statement. The due date is built from the due day in the statement month
// and advanced one month at a time until it falls strictly after the
// statement close date, clamping the due day when the target month is short.
// With close day 25 and due day 10, a purchase on the 20th of January is on
// the January statement due February 10th; a purchase on the 27th is on the
// February statement due March 10th.
func ResolveCycle(txDate time.Time, statementCloseDay, dueDay int) (Cycle, error) {
	if statementCloseDay < 1 || statementCloseDay > 31 {
		return Cycle{}, fmt.Errorf("%w: statement close day %d", ErrInvalidCycleConfig, statementCloseDay)
	}
	if dueDay < 1 || dueDay > 31 {
		return Cycle{}, fmt.Errorf("%w: due day %d", ErrInvalidCycleConfig, dueDay)
	}
	if txDate.IsZero() {
		return Cycle{}, fmt.Errorf("%w: zero transaction date", ErrInvalidCycleConfig)
	}

	txMonth := MonthOf(txDate)
	statementMonth := txMonth
	if txDate.Day() > ClampDay(txDate.Year(), int(txDate.Month()), statementCloseDay) {
		statementMonth = txMonth.Next()
	}

	closeDate := statementMonth.DateIn(statementCloseDay)

	dueMonth := statementMonth
	dueDate := dueMonth.DateIn(dueDay)
	for !dueDate.After(closeDate) {
		dueMonth = dueMonth.Next()
		dueDate = dueMonth.DateIn(dueDay)
	}

	return Cycle{
		StatementMonth: statementMonth,
		DueMonth:       dueMonth,
		DueDate:        dueDate,
	}, nil
}

// ResolveCardCycle resolves the cycle for a transaction on a specific card,
// rejecting cards without a configured cycle.
func ResolveCardCycle(txDate time.Time, card CreditCard) (Cycle, error) {
	if !card.HasCycle() {
		return Cycle{}, fmt.Errorf("%w: card %q has no statement cycle", ErrInvalidCycleConfig, card.Name)
	}
	return ResolveCycle(txDate, card.StatementCloseDay, card.DueDay)
}
