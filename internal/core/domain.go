package core

import (
	"errors"
	"strings"
	"time"
)

// MonthStatus is the lifecycle state of a ledger month. Closed is terminal:
// a month never reopens, retroactive fixes go in as correction transactions.
type MonthStatus string

const (
	MonthOpen   MonthStatus = "open"
	MonthClosed MonthStatus = "closed"
)

// Category is the top-level budget classification of a transaction.
type Category string

const (
	CategoryFixed    Category = "Fixed"
	CategoryVariable Category = "Variable"
	CategoryIncome   Category = "Income"
	CategorySavings  Category = "Savings"
)

// Valid reports whether c is one of the four ledger categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFixed, CategoryVariable, CategoryIncome, CategorySavings:
		return true
	}
	return false
}

// PaymentMethod describes the instrument a transaction was made with.
type PaymentMethod string

const (
	PaymentDebit      PaymentMethod = "debit"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentCash       PaymentMethod = "cash"
)

// TxType distinguishes normal entries from retroactive corrections.
// Corrections are exempt from the closed-month write restriction and nothing
// else.
type TxType string

const (
	TxNormal     TxType = "normal"
	TxCorrection TxType = "correction"
)

// Month is one ledger month. EndingBalance is set if and only if the month is
// closed.
type Month struct {
	ID              MonthID
	StartingBalance Money
	EndingBalance   *Money
	Status          MonthStatus
}

// Closed reports whether the month has been closed.
func (m Month) Closed() bool { return m.Status == MonthClosed }

// BankAccount is a cash account. Validity over time is a half-open interval
// of month keys; soft retirement replaces deletion so history keeps its
// attribution.
type BankAccount struct {
	ID            int64
	Name          string
	Active        bool
	EffectiveFrom MonthID
	EffectiveTo   MonthID // zero = still active
}

// CoversMonth reports whether the account is usable in month m.
func (a BankAccount) CoversMonth(m MonthID) bool {
	if !a.Active {
		return false
	}
	if m.Before(a.EffectiveFrom) {
		return false
	}
	return a.EffectiveTo.IsZero() || !a.EffectiveTo.Before(m)
}

// Validate checks structural invariants of the account row.
func (a BankAccount) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("empty account name")
	}
	if a.EffectiveFrom.IsZero() {
		return errors.New("missing effective-from month")
	}
	if !a.EffectiveTo.IsZero() && a.EffectiveTo.Before(a.EffectiveFrom) {
		return errors.New("effective-to before effective-from")
	}
	return nil
}

// CreditCard is a card billed against an owning bank account. The statement
// close day and due day drive the cycle resolver; both zero means the card
// has no configured cycle.
type CreditCard struct {
	ID                int64
	Name              string
	BankAccountID     int64
	StatementCloseDay int
	DueDay            int
	Active            bool
	EffectiveFrom     MonthID
	EffectiveTo       MonthID
}

// CoversMonth reports whether the card is usable in month m.
func (c CreditCard) CoversMonth(m MonthID) bool {
	if !c.Active {
		return false
	}
	if m.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo.IsZero() || !c.EffectiveTo.Before(m)
}

// Validate checks structural invariants of the card row.
func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty card name")
	}
	if c.BankAccountID == 0 {
		return errors.New("missing owning bank account")
	}
	if c.EffectiveFrom.IsZero() {
		return errors.New("missing effective-from month")
	}
	if !c.EffectiveTo.IsZero() && c.EffectiveTo.Before(c.EffectiveFrom) {
		return errors.New("effective-to before effective-from")
	}
	if (c.StatementCloseDay == 0) != (c.DueDay == 0) {
		return ErrInvalidCycleConfig
	}
	if c.StatementCloseDay != 0 {
		if c.StatementCloseDay < 1 || c.StatementCloseDay > 31 || c.DueDay < 1 || c.DueDay > 31 {
			return ErrInvalidCycleConfig
		}
	}
	return nil
}

// HasCycle reports whether the card has a configured billing cycle.
func (c CreditCard) HasCycle() bool {
	return c.StatementCloseDay != 0 && c.DueDay != 0
}

// AccountMonthBalance is the per-account balance row of one month.
// EndingBalance is set when the owning month closes; the next month's
// starting balance equals it (carry-forward law).
type AccountMonthBalance struct {
	MonthID         MonthID
	BankAccountID   int64
	StartingBalance Money
	EndingBalance   *Money
}

// Transaction is one posted ledger entry. MonthID is the cash month for the
// direct instrument. A credit-card transaction never touches a bank balance
// directly: its cash effect lands on the card's owning account in DueMonth.
type Transaction struct {
	ID            int64
	Date          time.Time
	MonthID       MonthID
	Amount        Money
	Category      Category
	Subcategory   string
	PaymentMethod PaymentMethod
	BankAccountID int64 // 0 = none
	CreditCardID  int64 // 0 = none

	// Cycle annotation, set for credit-card transactions only.
	StatementMonth MonthID
	DueMonth       MonthID
	DueDate        time.Time

	Note string
	Type TxType

	// Recurrence provenance: set when the transaction was generated from a
	// template, used for idempotent expansion.
	SourceKind string
	SourceID   int64
}

// Validate checks the transaction's own invariants; referential checks
// against master data happen in the ledger service.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("missing transaction date")
	}
	if t.MonthID.IsZero() {
		return errors.New("missing month key")
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if !t.Category.Valid() {
		return errors.New("unknown category: " + string(t.Category))
	}
	if t.BankAccountID != 0 && t.CreditCardID != 0 {
		return errors.New("transaction references both a bank account and a credit card")
	}
	if t.Type != TxNormal && t.Type != TxCorrection {
		return errors.New("unknown transaction type: " + string(t.Type))
	}
	if len(t.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

// BudgetObjective is a target share of monthly income for a category or
// subcategory. At most one objective per pair is active at a time; changing a
// percentage means retiring the old row and inserting a new one.
type BudgetObjective struct {
	ID          int64
	Category    Category
	Subcategory string // empty = whole-category objective
	Percentage  float64
	Active      bool
}

// Validate checks structural invariants of the objective row.
func (o BudgetObjective) Validate() error {
	if !o.Category.Valid() {
		return errors.New("unknown category: " + string(o.Category))
	}
	if o.Percentage < 0 {
		return errors.New("negative percentage")
	}
	return nil
}

// RecurringTemplate is a fixed-expense or income-source generator, consumed
// once per month by the recurrence expander. Kind tells the two apart; the
// amount is always stored positive and signed at expansion time.
type RecurringTemplate struct {
	ID            int64
	Kind          TemplateKind
	Name          string
	Amount        Money // positive
	DueDay        int
	Category      Category
	Subcategory   string
	BankAccountID int64 // 0 = none
	Active        bool
}

// TemplateKind separates fixed-expense templates from income sources.
type TemplateKind string

const (
	TemplateFixedExpense TemplateKind = "fixed_expense"
	TemplateIncomeSource TemplateKind = "income_source"
)

// Validate checks structural invariants of the template row.
func (r RecurringTemplate) Validate() error {
	if r.Kind != TemplateFixedExpense && r.Kind != TemplateIncomeSource {
		return errors.New("unknown template kind: " + string(r.Kind))
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("empty template name")
	}
	if r.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if r.DueDay < 1 || r.DueDay > 31 {
		return errors.New("due day out of range")
	}
	if !r.Category.Valid() {
		return errors.New("unknown category: " + string(r.Category))
	}
	return nil
}
