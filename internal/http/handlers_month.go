package http

import (
	"fmt"
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type bootstrapRequest struct {
	Month    string `json:"month"`
	Balances []struct {
		BankAccountID int64  `json:"bank_account_id"`
		Starting      string `json:"starting"`
	} `json:"balances"`
}

func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	month, err := core.ParseMonthID(req.Month)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	balances := make(map[int64]int64, len(req.Balances))
	for _, b := range req.Balances {
		cents, err := core.ParseBalanceCents(b.Starting)
		if err != nil {
			badRequest(w, fmt.Sprintf("invalid starting balance for account %d", b.BankAccountID))
			return
		}
		balances[b.BankAccountID] = cents
	}

	created, err := s.closer.Bootstrap(r.Context(), month, balances)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, monthView(created))
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.reporter.Months(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]monthJSON, 0, len(months))
	for _, m := range months {
		views = append(views, monthView(m))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCurrentMonth(w http.ResponseWriter, r *http.Request) {
	current, err := s.reporter.CurrentMonth(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthView(current))
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	report, err := s.reporter.MonthReport(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportView(report))
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	snapshot, err := s.closer.Close(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Closed monthJSON `json:"closed"`
		Next   monthJSON `json:"next"`
	}{
		Closed: monthView(snapshot.Closed),
		Next:   monthView(snapshot.Next),
	})
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	report, err := s.expander.Expand(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expandView(report))
}

func (s *Server) handleExpandPreview(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	preview, err := s.expander.Preview(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]transactionJSON, 0, len(preview))
	for _, t := range preview {
		views = append(views, transactionView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleEvaluateObjectives(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	results, err := s.evaluator.Evaluate(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]objectiveResultJSON, 0, len(results))
	for _, res := range results {
		views = append(views, objectiveResultView(res))
	}
	writeJSON(w, http.StatusOK, views)
}

func expandView(report services.ExpandReport) any {
	created := make([]transactionJSON, 0, len(report.Created))
	for _, t := range report.Created {
		created = append(created, transactionView(t))
	}
	skipped := make([]string, 0, len(report.Skipped))
	for _, tpl := range report.Skipped {
		skipped = append(skipped, tpl.Name)
	}
	excluded := make([]string, 0, len(report.Excluded))
	for _, tpl := range report.Excluded {
		excluded = append(excluded, tpl.Name)
	}
	return struct {
		Month    string            `json:"month"`
		Created  []transactionJSON `json:"created"`
		Skipped  []string          `json:"skipped"`
		Excluded []string          `json:"excluded"`
	}{string(report.Month), created, skipped, excluded}
}
