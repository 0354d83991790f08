package http

import (
	"net/http"

	"bilancio/internal/core"
)

type accountRequest struct {
	Name          string `json:"name"`
	EffectiveFrom string `json:"effective_from"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	account := core.BankAccount{
		Name:          req.Name,
		Active:        true,
		EffectiveFrom: core.MonthID(req.EffectiveFrom),
	}
	if err := account.Validate(); err != nil {
		unprocessable(w, err)
		return
	}
	created, err := s.registry.CreateBankAccount(r.Context(), account)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountView(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.registry.BankAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView(a))
	}
	writeJSON(w, http.StatusOK, views)
}

type retireRequest struct {
	EffectiveTo string `json:"effective_to"`
}

func (s *Server) handleRetireAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req retireRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	month, err := core.ParseMonthID(req.EffectiveTo)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.registry.RetireBankAccount(r.Context(), id, month); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type cardRequest struct {
	Name              string `json:"name"`
	BankAccountID     int64  `json:"bank_account_id"`
	StatementCloseDay int    `json:"statement_close_day,omitempty"`
	DueDay            int    `json:"due_day,omitempty"`
	EffectiveFrom     string `json:"effective_from"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	card := core.CreditCard{
		Name:              req.Name,
		BankAccountID:     req.BankAccountID,
		StatementCloseDay: req.StatementCloseDay,
		DueDay:            req.DueDay,
		Active:            true,
		EffectiveFrom:     core.MonthID(req.EffectiveFrom),
	}
	if err := card.Validate(); err != nil {
		unprocessable(w, err)
		return
	}
	created, err := s.registry.CreateCreditCard(r.Context(), card)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cardView(created))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.registry.CreditCards(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]cardJSON, 0, len(cards))
	for _, c := range cards {
		views = append(views, cardView(c))
	}
	writeJSON(w, http.StatusOK, views)
}

type cycleRequest struct {
	StatementCloseDay int `json:"statement_close_day"`
	DueDay            int `json:"due_day"`
}

func (s *Server) handleConfigureCardCycle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req cycleRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.registry.ConfigureCardCycle(r.Context(), id, req.StatementCloseDay, req.DueDay); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (s *Server) handleRetireCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req retireRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	month, err := core.ParseMonthID(req.EffectiveTo)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.registry.RetireCreditCard(r.Context(), id, month); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type templateRequest struct {
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	Amount        string `json:"amount"` // positive decimal
	DueDay        int    `json:"due_day"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	BankAccountID int64  `json:"bank_account_id,omitempty"`
}

func (s *Server) handleUpsertTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	cents, err := core.ParseSignedCents(req.Amount)
	if err != nil {
		unprocessable(w, err)
		return
	}
	template := core.RecurringTemplate{
		Kind:          core.TemplateKind(req.Kind),
		Name:          req.Name,
		Amount:        core.Money{Cents: cents},
		DueDay:        req.DueDay,
		Category:      core.Category(req.Category),
		Subcategory:   req.Subcategory,
		BankAccountID: req.BankAccountID,
		Active:        true,
	}
	if err := template.Validate(); err != nil {
		unprocessable(w, err)
		return
	}
	created, err := s.registry.UpsertTemplate(r.Context(), template)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateView(created))
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	kind := core.TemplateKind(r.URL.Query().Get("kind"))
	templates, err := s.registry.Templates(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]templateJSON, 0, len(templates))
	for _, t := range templates {
		views = append(views, templateView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRetireTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.registry.RetireTemplate(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
