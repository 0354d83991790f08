package core

import "errors"

// CloseSnapshot is the complete result of a month-close transition: the
// closed month with its balances and the freshly opened next month with its
// carry-forward seeds. The closer computes it as a value and the storage
// layer commits it as one unit, so a partially applied close cannot exist.
type CloseSnapshot struct {
	Closed         Month                 // status closed, ending balance set
	ClosedBalances []AccountMonthBalance // ending balances set
	Next           Month                 // status open
	NextBalances   []AccountMonthBalance // starting balances carried forward
}

// Validate checks the snapshot's internal consistency before it is handed to
// the storage layer.
func (s CloseSnapshot) Validate() error {
	if s.Closed.Status != MonthClosed || s.Closed.EndingBalance == nil {
		return errors.New("closed month incomplete")
	}
	if s.Next.Status != MonthOpen {
		return errors.New("next month must open")
	}
	if s.Next.ID != s.Closed.ID.Next() {
		return errors.New("next month must directly follow the closed month")
	}
	for _, b := range s.ClosedBalances {
		if b.MonthID != s.Closed.ID || b.EndingBalance == nil {
			return errors.New("closed balance row incomplete")
		}
	}
	carried := make(map[int64]Money, len(s.ClosedBalances))
	for _, b := range s.ClosedBalances {
		carried[b.BankAccountID] = *b.EndingBalance
	}
	for _, b := range s.NextBalances {
		if b.MonthID != s.Next.ID {
			return errors.New("next balance row on wrong month")
		}
		if prev, ok := carried[b.BankAccountID]; !ok || prev != b.StartingBalance {
			return errors.New("carry-forward mismatch")
		}
	}
	return nil
}
