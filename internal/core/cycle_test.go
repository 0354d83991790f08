package core

import (
	"errors"
	"testing"
	"time"
)

func TestResolveCycle(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		closeDay  int
		dueDay    int
		wantStmt  MonthID
		wantDue   MonthID
		wantDueOn time.Time
	}{
		{
			name:      "before close day stays in current statement",
			date:      time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			closeDay:  25, dueDay: 10,
			wantStmt:  "2026-01",
			wantDue:   "2026-02",
			wantDueOn: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "after close day rolls to next statement",
			date:      time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			closeDay:  25, dueDay: 10,
			wantStmt:  "2026-02",
			wantDue:   "2026-03",
			wantDueOn: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "due day after close day stays in statement month",
			date:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			closeDay:  15, dueDay: 28,
			wantStmt:  "2026-01",
			wantDue:   "2026-01",
			wantDueOn: time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "on close day belongs to current statement",
			date:      time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
			closeDay:  25, dueDay: 10,
			wantStmt:  "2026-01",
			wantDue:   "2026-02",
			wantDueOn: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "due day clamped in short month",
			date:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			closeDay:  25, dueDay: 31,
			wantStmt:  "2026-01",
			wantDue:   "2026-01",
			wantDueOn: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "due day 30 after january statement lands on feb 28 rolled",
			date:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
			closeDay:  26, dueDay: 28,
			wantStmt:  "2026-02",
			wantDue:   "2026-02",
			wantDueOn: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "close day clamped when statement month is short",
			date:      time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
			closeDay:  30, dueDay: 10,
			wantStmt:  "2026-02", // feb close clamps to the 28th, purchase is on it
			wantDue:   "2026-03",
			wantDueOn: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "december statement rolls due into next year",
			date:      time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC),
			closeDay:  25, dueDay: 10,
			wantStmt:  "2027-01",
			wantDue:   "2027-02",
			wantDueOn: time.Date(2027, 2, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCycle(tt.date, tt.closeDay, tt.dueDay)
			if err != nil {
				t.Fatalf("ResolveCycle() error = %v", err)
			}
			if got.StatementMonth != tt.wantStmt {
				t.Errorf("statement month = %s, want %s", got.StatementMonth, tt.wantStmt)
			}
			if got.DueMonth != tt.wantDue {
				t.Errorf("due month = %s, want %s", got.DueMonth, tt.wantDue)
			}
			if !got.DueDate.Equal(tt.wantDueOn) {
				t.Errorf("due date = %v, want %v", got.DueDate, tt.wantDueOn)
			}
			if !got.DueDate.After(tt.wantStmt.DateIn(tt.closeDay)) {
				t.Errorf("due date %v not after statement close", got.DueDate)
			}
		})
	}
}

func TestResolveCycleInvalidConfig(t *testing.T) {
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		closeDay int
		dueDay   int
	}{
		{"zero close day", 0, 10},
		{"close day over 31", 32, 10},
		{"zero due day", 25, 0},
		{"due day over 31", 25, 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveCycle(date, tc.closeDay, tc.dueDay)
			if !errors.Is(err, ErrInvalidCycleConfig) {
				t.Fatalf("expected ErrInvalidCycleConfig, got %v", err)
			}
		})
	}
}

func TestResolveCardCycleRequiresConfig(t *testing.T) {
	card := CreditCard{ID: 1, Name: "no-cycle", BankAccountID: 1, EffectiveFrom: "2026-01", Active: true}
	_, err := ResolveCardCycle(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), card)
	if !errors.Is(err, ErrInvalidCycleConfig) {
		t.Fatalf("expected ErrInvalidCycleConfig for card without cycle, got %v", err)
	}
}
