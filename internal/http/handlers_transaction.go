package http

import (
	"net/http"

	"bilancio/internal/core"
)

type transactionRequest struct {
	Date          string `json:"date"`
	Month         string `json:"month,omitempty"` // defaults to the date's month
	Amount        string `json:"amount"`          // signed decimal, e.g. "-12,34"
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	BankAccountID int64  `json:"bank_account_id,omitempty"`
	CreditCardID  int64  `json:"credit_card_id,omitempty"`
	Note          string `json:"note,omitempty"`
	Correction    bool   `json:"correction,omitempty"`
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	month := core.MonthOf(date)
	if req.Month != "" {
		month, err = core.ParseMonthID(req.Month)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	cents, err := core.ParseSignedCents(req.Amount)
	if err != nil {
		unprocessable(w, err)
		return
	}

	t := core.Transaction{
		Date:          date,
		MonthID:       month,
		Amount:        core.Money{Cents: cents},
		Category:      core.Category(req.Category),
		Subcategory:   req.Subcategory,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
		BankAccountID: req.BankAccountID,
		CreditCardID:  req.CreditCardID,
		Note:          req.Note,
		Type:          core.TxNormal,
	}
	if req.Correction {
		t.Type = core.TxCorrection
	}
	if err := t.Validate(); err != nil {
		unprocessable(w, err)
		return
	}

	recorded, err := s.ledger.Record(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionView(recorded))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	txs, err := s.ledger.Transactions(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		views = append(views, transactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}
