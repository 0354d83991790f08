package http

import (
	"bilancio/internal/core"
	"bilancio/internal/services"
)

type monthJSON struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	StartingCents int64  `json:"starting_cents"`
	EndingCents   *int64 `json:"ending_cents,omitempty"`
}

func monthView(m core.Month) monthJSON {
	v := monthJSON{
		ID:            string(m.ID),
		Status:        string(m.Status),
		StartingCents: m.StartingBalance.Cents,
	}
	if m.EndingBalance != nil {
		cents := m.EndingBalance.Cents
		v.EndingCents = &cents
	}
	return v
}

type transactionJSON struct {
	ID             int64  `json:"id,omitempty"`
	Date           string `json:"date"`
	Month          string `json:"month"`
	AmountCents    int64  `json:"amount_cents"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory,omitempty"`
	PaymentMethod  string `json:"payment_method"`
	BankAccountID  int64  `json:"bank_account_id,omitempty"`
	CreditCardID   int64  `json:"credit_card_id,omitempty"`
	StatementMonth string `json:"statement_month,omitempty"`
	DueMonth       string `json:"due_month,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	Note           string `json:"note,omitempty"`
	Type           string `json:"type"`
}

func transactionView(t core.Transaction) transactionJSON {
	v := transactionJSON{
		ID:             t.ID,
		Date:           t.Date.Format("2006-01-02"),
		Month:          string(t.MonthID),
		AmountCents:    t.Amount.Cents,
		Category:       string(t.Category),
		Subcategory:    t.Subcategory,
		PaymentMethod:  string(t.PaymentMethod),
		BankAccountID:  t.BankAccountID,
		CreditCardID:   t.CreditCardID,
		StatementMonth: string(t.StatementMonth),
		DueMonth:       string(t.DueMonth),
		Note:           t.Note,
		Type:           string(t.Type),
	}
	if !t.DueDate.IsZero() {
		v.DueDate = t.DueDate.Format("2006-01-02")
	}
	return v
}

type accountJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Active        bool   `json:"active"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to,omitempty"`
}

func accountView(a core.BankAccount) accountJSON {
	return accountJSON{
		ID:            a.ID,
		Name:          a.Name,
		Active:        a.Active,
		EffectiveFrom: string(a.EffectiveFrom),
		EffectiveTo:   string(a.EffectiveTo),
	}
}

type cardJSON struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	BankAccountID     int64  `json:"bank_account_id"`
	StatementCloseDay int    `json:"statement_close_day,omitempty"`
	DueDay            int    `json:"due_day,omitempty"`
	Active            bool   `json:"active"`
	EffectiveFrom     string `json:"effective_from"`
	EffectiveTo       string `json:"effective_to,omitempty"`
}

func cardView(c core.CreditCard) cardJSON {
	return cardJSON{
		ID:                c.ID,
		Name:              c.Name,
		BankAccountID:     c.BankAccountID,
		StatementCloseDay: c.StatementCloseDay,
		DueDay:            c.DueDay,
		Active:            c.Active,
		EffectiveFrom:     string(c.EffectiveFrom),
		EffectiveTo:       string(c.EffectiveTo),
	}
}

type templateJSON struct {
	ID            int64  `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	AmountCents   int64  `json:"amount_cents"`
	DueDay        int    `json:"due_day"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	BankAccountID int64  `json:"bank_account_id,omitempty"`
}

func templateView(t core.RecurringTemplate) templateJSON {
	return templateJSON{
		ID:            t.ID,
		Kind:          string(t.Kind),
		Name:          t.Name,
		AmountCents:   t.Amount.Cents,
		DueDay:        t.DueDay,
		Category:      string(t.Category),
		Subcategory:   t.Subcategory,
		BankAccountID: t.BankAccountID,
	}
}

type objectiveJSON struct {
	ID          int64   `json:"id"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Percentage  float64 `json:"percentage"`
}

func objectiveView(o core.BudgetObjective) objectiveJSON {
	return objectiveJSON{
		ID:          o.ID,
		Category:    string(o.Category),
		Subcategory: o.Subcategory,
		Percentage:  o.Percentage,
	}
}

type objectiveResultJSON struct {
	Objective     objectiveJSON `json:"objective"`
	Month         string        `json:"month"`
	IncomeCents   int64         `json:"income_cents"`
	RealizedCents int64         `json:"realized_cents"`
	Defined       bool          `json:"defined"`
	RealizedPct   float64       `json:"realized_pct"`
	DeltaPct      float64       `json:"delta_pct"`
}

func objectiveResultView(res services.ObjectiveResult) objectiveResultJSON {
	return objectiveResultJSON{
		Objective:     objectiveView(res.Objective),
		Month:         string(res.Month),
		IncomeCents:   res.IncomeCents,
		RealizedCents: res.RealizedCents,
		Defined:       res.Defined,
		RealizedPct:   res.RealizedPct,
		DeltaPct:      res.DeltaPct,
	}
}

type accountLineJSON struct {
	Account       accountJSON `json:"account"`
	StartingCents int64       `json:"starting_cents"`
	NetCents      int64       `json:"net_cents"`
	EndingCents   int64       `json:"ending_cents"`
}

type reportJSON struct {
	Month          monthJSON             `json:"month"`
	NetCents       int64                 `json:"net_cents"`
	ProjectedCents int64                 `json:"projected_cents"`
	Accounts       []accountLineJSON     `json:"accounts"`
	Categories     map[string]int64      `json:"categories"`
	Objectives     []objectiveResultJSON `json:"objectives"`
}

func reportView(report services.MonthReport) reportJSON {
	accounts := make([]accountLineJSON, 0, len(report.Accounts))
	for _, line := range report.Accounts {
		accounts = append(accounts, accountLineJSON{
			Account:       accountView(line.Account),
			StartingCents: line.StartingCents,
			NetCents:      line.NetCents,
			EndingCents:   line.EndingCents,
		})
	}
	categories := make(map[string]int64, len(report.Categories))
	for cat, total := range report.Categories {
		categories[string(cat)] = total
	}
	objectives := make([]objectiveResultJSON, 0, len(report.Objectives))
	for _, res := range report.Objectives {
		objectives = append(objectives, objectiveResultView(res))
	}
	return reportJSON{
		Month:          monthView(report.Month),
		NetCents:       report.NetCents,
		ProjectedCents: report.ProjectedCents,
		Accounts:       accounts,
		Categories:     categories,
		Objectives:     objectives,
	}
}
