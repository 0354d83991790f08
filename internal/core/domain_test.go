package core

import (
	"testing"
	"time"
)

func TestBankAccountCoversMonth(t *testing.T) {
	tests := []struct {
		name    string
		account BankAccount
		month   MonthID
		want    bool
	}{
		{
			name:    "open-ended account covers later months",
			account: BankAccount{Active: true, EffectiveFrom: "2025-01"},
			month:   "2026-06",
			want:    true,
		},
		{
			name:    "month before effective-from",
			account: BankAccount{Active: true, EffectiveFrom: "2026-03"},
			month:   "2026-02",
			want:    false,
		},
		{
			name:    "month after effective-to",
			account: BankAccount{Active: true, EffectiveFrom: "2025-01", EffectiveTo: "2026-01"},
			month:   "2026-02",
			want:    false,
		},
		{
			name:    "effective-to month itself is covered",
			account: BankAccount{Active: true, EffectiveFrom: "2025-01", EffectiveTo: "2026-01"},
			month:   "2026-01",
			want:    true,
		},
		{
			name:    "inactive account covers nothing",
			account: BankAccount{Active: false, EffectiveFrom: "2025-01"},
			month:   "2025-06",
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.CoversMonth(tt.month); got != tt.want {
				t.Errorf("CoversMonth(%s) = %v, want %v", tt.month, got, tt.want)
			}
		})
	}
}

func TestBankAccountValidate(t *testing.T) {
	good := BankAccount{Name: "Checking", EffectiveFrom: "2026-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []BankAccount{
		{Name: "", EffectiveFrom: "2026-01"},
		{Name: "Checking"},
		{Name: "Checking", EffectiveFrom: "2026-05", EffectiveTo: "2026-01"},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestCreditCardValidate(t *testing.T) {
	good := CreditCard{Name: "Visa", BankAccountID: 1, StatementCloseDay: 25, DueDay: 10, EffectiveFrom: "2026-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// A card may legitimately have no cycle at all.
	noCycle := CreditCard{Name: "Prepaid", BankAccountID: 1, EffectiveFrom: "2026-01"}
	if err := noCycle.Validate(); err != nil {
		t.Fatalf("card without cycle should validate, got %v", err)
	}

	bads := []CreditCard{
		{Name: "", BankAccountID: 1, EffectiveFrom: "2026-01"},
		{Name: "Visa", EffectiveFrom: "2026-01"},
		{Name: "Visa", BankAccountID: 1, StatementCloseDay: 25, EffectiveFrom: "2026-01"}, // due day missing
		{Name: "Visa", BankAccountID: 1, StatementCloseDay: 40, DueDay: 10, EffectiveFrom: "2026-01"},
		{Name: "Visa", BankAccountID: 1, StatementCloseDay: 25, DueDay: 10, EffectiveFrom: "2026-05", EffectiveTo: "2026-01"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		MonthID:  "2026-01",
		Amount:   Money{Cents: -4200},
		Category: CategoryVariable,
		Type:     TxNormal,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{MonthID: "2026-01", Amount: Money{Cents: 1}, Category: CategoryFixed, Type: TxNormal}, // zero date
		{Date: good.Date, Amount: Money{Cents: 1}, Category: CategoryFixed, Type: TxNormal},    // missing month
		{Date: good.Date, MonthID: "2026-01", Category: CategoryFixed, Type: TxNormal},         // zero amount
		{Date: good.Date, MonthID: "2026-01", Amount: Money{Cents: 1}, Category: "Leisure", Type: TxNormal},
		{Date: good.Date, MonthID: "2026-01", Amount: Money{Cents: 1}, Category: CategoryFixed, Type: "reversal"},
		{Date: good.Date, MonthID: "2026-01", Amount: Money{Cents: 1}, Category: CategoryFixed, Type: TxNormal, BankAccountID: 1, CreditCardID: 2},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	good := RecurringTemplate{
		Kind:     TemplateFixedExpense,
		Name:     "Rent",
		Amount:   Money{Cents: 90000},
		DueDay:   1,
		Category: CategoryFixed,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []RecurringTemplate{
		{Kind: "weekly", Name: "x", Amount: Money{Cents: 1}, DueDay: 1, Category: CategoryFixed},
		{Kind: TemplateFixedExpense, Name: "", Amount: Money{Cents: 1}, DueDay: 1, Category: CategoryFixed},
		{Kind: TemplateFixedExpense, Name: "x", Amount: Money{Cents: -5}, DueDay: 1, Category: CategoryFixed},
		{Kind: TemplateFixedExpense, Name: "x", Amount: Money{Cents: 1}, DueDay: 0, Category: CategoryFixed},
		{Kind: TemplateIncomeSource, Name: "x", Amount: Money{Cents: 1}, DueDay: 35, Category: CategoryIncome},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
